package core

import (
	"fmt"
	"strings"
)

// Patch is a partial update of the record. Nil fields are left unchanged and
// Metadata is merged into the existing metadata.
type Patch struct {
	Title       *string
	Description *string
	Metadata    Metadata
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && len(p.Metadata) == 0
}

// CreateRecord creates the single shared record, owned by the connected owner.
func (s *Service) CreateRecord(title, description string, metadata Metadata) (Record, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
		return Record{}, ErrMissingField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Connected {
		return Record{}, ErrNotConnected
	}
	if s.record != nil {
		return Record{}, ErrRecordExists
	}

	txRef, err := s.txRefs.NewTransactionRef()
	if err != nil {
		return Record{}, fmt.Errorf("mint transaction reference: %w", err)
	}

	rec := &Record{
		Title:            title,
		Description:      description,
		Metadata:         metadata.Clone(),
		CreatedAt:        s.now(),
		CurrentOwnerName: s.session.Name,
		TransactionRef:   txRef,
		OwnerHistory:     []OwnershipEvent{},
	}
	s.record = rec
	s.appendEvent(ActionRecordCreated, s.session.Name,
		fmt.Sprintf("Record created with initial data: %s", title), txRef)
	s.logger.Debug("record created", "title", title, "tx", txRef)

	return rec.Clone(), nil
}

// Write applies patch on behalf of actorID, which must be the owner or a
// collaborator holding write permission. Unknown actors are ignored.
func (s *Service) Write(actorID string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var actorName string
	switch {
	case actorID == OwnerID:
		if !s.session.Connected {
			return ErrNotConnected
		}
		actorName = s.session.Name
	case s.collaborator(actorID) != nil:
		e := s.collaborator(actorID)
		if !e.Effective().Write {
			return ErrWriteDenied
		}
		actorName = e.Name
	case s.previousOwner(actorID) != nil:
		return ErrWriteDenied
	default:
		s.logger.Debug("write from unknown actor ignored", "entity", actorID)
		return nil
	}

	if s.record == nil {
		return ErrNoRecord
	}
	if patch.Empty() {
		return ErrEmptyPatch
	}

	if patch.Title != nil {
		s.record.Title = *patch.Title
	}
	if patch.Description != nil {
		s.record.Description = *patch.Description
	}
	s.record.Metadata.Merge(patch.Metadata)

	s.appendEvent(ActionDataUpdated, actorName,
		fmt.Sprintf("%s added new data to the record", actorName), "")
	s.logger.Debug("record written", "entity", actorID, "keys", len(patch.Metadata))
	return nil
}

// LoadInto copies the current record into a collaborator's cache. Loading is
// not reading: the copy is gated when it is rendered, see View.
func (s *Service) LoadInto(entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entityID == OwnerID {
		return nil
	}
	if s.previousOwner(entityID) != nil {
		return ErrImmutableEntity
	}
	e := s.collaborator(entityID)
	if e == nil {
		s.logger.Debug("load into unknown entity ignored", "entity", entityID)
		return nil
	}
	if s.record == nil {
		return ErrNoRecord
	}

	rec := s.record.Clone()
	e.CachedData = &rec
	e.HasLoadedData = true
	s.logger.Debug("record loaded", "entity", entityID)
	return nil
}
