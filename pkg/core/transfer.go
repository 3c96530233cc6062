package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Metadata key prefixes written on every transfer. The numeric suffix is the
// history length after the transfer, so keys never collide. They are a
// display aid only; OwnerHistory is authoritative.
const (
	MetaPreviousOwner          = "previousOwner_"
	MetaPreviousOwnerPublicKey = "previousOwnerPublicKey_"
	MetaTransferDate           = "transferDate_"
	MetaTransactionHash        = "transactionHash_"
)

const previousOwnerIDPrefix = "prev-owner-"

// GenerateOwner adds a new candidate to the potential owner pool.
func (s *Service) GenerateOwner(name string) (PotentialOwner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return PotentialOwner{}, ErrMissingField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kp, err := s.keys.GenerateKeypair()
	if err != nil {
		return PotentialOwner{}, fmt.Errorf("generate owner keys: %w", err)
	}

	po := PotentialOwner{
		ID:        s.newID(),
		Name:      name,
		PublicKey: kp.PublicKey,
	}
	s.candidates = append(s.candidates, po)
	s.appendEvent(ActionOwnerGenerated, name, fmt.Sprintf("New wallet generated for %s", name), "")
	s.logger.Debug("potential owner generated", "candidate", po.ID, "name", name)
	return po, nil
}

// RemovePotentialOwner drops a candidate from the pool. Unknown ids are ignored.
func (s *Service) RemovePotentialOwner(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.candidateIndex(id); idx >= 0 {
		s.candidates = append(s.candidates[:idx:idx], s.candidates[idx+1:]...)
		s.logger.Debug("potential owner removed", "candidate", id)
	}
	return nil
}

// PotentialOwners returns the candidate pool.
func (s *Service) PotentialOwners() []PotentialOwner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]PotentialOwner(nil), s.candidates...)
}

// Transfer hands the record to the candidate targetID in one step: the
// outgoing owner is written to history and frozen as a previous owner, the
// session switches to the new owner and every collaborator loses its
// permissions. Pending requests are kept.
func (s *Service) Transfer(targetID string) (OwnershipEvent, error) {
	if targetID == "" {
		return OwnershipEvent{}, ErrNoTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.record == nil {
		return OwnershipEvent{}, ErrNoRecord
	}
	if !s.session.Connected {
		return OwnershipEvent{}, ErrNotConnected
	}
	idx := s.candidateIndex(targetID)
	if idx < 0 {
		return OwnershipEvent{}, ErrUnknownTarget
	}
	target := s.candidates[idx]

	// Everything that can fail happens before the first mutation.
	txRef, err := s.txRefs.NewTransactionRef()
	if err != nil {
		return OwnershipEvent{}, fmt.Errorf("mint transaction reference: %w", err)
	}
	kp, err := s.keys.GenerateKeypair()
	if err != nil {
		return OwnershipEvent{}, fmt.Errorf("generate session keys: %w", err)
	}

	at := s.now()
	outgoing := s.ownerEntity()
	n := strconv.Itoa(len(s.record.OwnerHistory) + 1)

	s.record.Metadata.Set(MetaPreviousOwner+n, outgoing.Name)
	s.record.Metadata.Set(MetaPreviousOwnerPublicKey+n, outgoing.PublicKey)
	s.record.Metadata.Set(MetaTransferDate+n, at.UTC().Format(time.RFC3339))
	s.record.Metadata.Set(MetaTransactionHash+n, txRef)

	ev := OwnershipEvent{
		PreviousOwnerName:      outgoing.Name,
		PreviousOwnerPublicKey: outgoing.PublicKey,
		TransferredAt:          at,
		TransactionRef:         txRef,
	}
	s.record.OwnerHistory = append(s.record.OwnerHistory, ev)
	s.record.CurrentOwnerName = target.Name

	// The outgoing owner keeps the record as handed over, new owner included.
	snapshot := s.record.Clone()
	s.previousOwners = append(s.previousOwners, &Entity{
		ID:            previousOwnerIDPrefix + s.newID(),
		Name:          outgoing.Name,
		PublicKey:     outgoing.PublicKey,
		PrivateKey:    outgoing.PrivateKey,
		Permissions:   Permissions{Read: true, Write: false},
		CachedData:    &snapshot,
		HasLoadedData: true,
		Role:          RolePreviousOwner,
	})

	s.session = Session{
		Connected:  true,
		Name:       target.Name,
		Address:    address(target.PublicKey),
		PublicKey:  target.PublicKey,
		PrivateKey: kp.PrivateKey,
	}
	s.candidates = append(s.candidates[:idx:idx], s.candidates[idx+1:]...)

	for _, e := range s.collaborators {
		e.Permissions = Permissions{}
	}

	s.appendEvent(ActionRecordTransferred, target.Name,
		fmt.Sprintf("Record transferred from %s to %s", outgoing.Name, target.Name), txRef)
	s.logger.Debug("record transferred", "from", outgoing.Name, "to", target.Name, "tx", txRef)

	return ev, nil
}

func (s *Service) candidateIndex(id string) int {
	for i, c := range s.candidates {
		if c.ID == id {
			return i
		}
	}
	return -1
}
