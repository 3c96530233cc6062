package core

import (
	"fmt"
	"strings"
)

// CreateCollaborator registers a new collaborating system with no permissions.
func (s *Service) CreateCollaborator(name string) (Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entity{}, ErrMissingField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.record == nil {
		return Entity{}, ErrNoRecord
	}
	if len(s.collaborators) >= s.maxCollaborators {
		return Entity{}, ErrCollaboratorCap
	}

	kp, err := s.keys.GenerateKeypair()
	if err != nil {
		return Entity{}, fmt.Errorf("generate system keys: %w", err)
	}

	e := &Entity{
		ID:         s.newID(),
		Name:       name,
		PublicKey:  kp.PublicKey,
		PrivateKey: kp.PrivateKey,
		Role:       RoleCollaborator,
	}
	s.collaborators = append(s.collaborators, e)
	s.appendEvent(ActionSystemCreated, name, fmt.Sprintf("New system %q was created", name), "")
	s.logger.Debug("collaborator created", "entity", e.ID, "name", name)

	return redact(e.Clone()), nil
}

// RequestPermission files a pending request for kind on behalf of a
// collaborator. Requests are not deduplicated. Unknown entities are ignored
// and yield a zero request.
func (s *Service) RequestPermission(entityID string, kind Permission) (PermissionRequest, error) {
	if !kind.Valid() {
		return PermissionRequest{}, ErrUnknownPermission
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.collaborator(entityID)
	if e == nil {
		s.logger.Debug("permission request from unknown entity ignored", "entity", entityID)
		return PermissionRequest{}, nil
	}

	req := PermissionRequest{
		ID:         s.newID(),
		EntityID:   e.ID,
		EntityName: e.Name,
		Kind:       kind,
		Timestamp:  s.now(),
	}
	s.requests = append(s.requests, req)
	s.logger.Debug("permission requested", "entity", e.ID, "kind", kind, "request", req.ID)
	return req, nil
}

// ResolveRequest grants or denies a pending request and removes it.
// Only a grant is written to the timeline; a denial leaves no entry.
func (s *Service) ResolveRequest(requestID string, granted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.requests {
		if r.ID == requestID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.logger.Debug("unknown permission request ignored", "request", requestID)
		return nil
	}
	req := s.requests[idx]
	s.requests = append(s.requests[:idx:idx], s.requests[idx+1:]...)

	if !granted {
		s.logger.Debug("permission denied", "entity", req.EntityID, "kind", req.Kind, "request", req.ID)
		return nil
	}

	if e := s.collaborator(req.EntityID); e != nil {
		e.Permissions.set(req.Kind, true)
	}
	s.appendEvent(GrantedAction(req.Kind), req.EntityName,
		fmt.Sprintf("Owner granted %s permission to %s", req.Kind, req.EntityName), "")
	s.logger.Debug("permission granted", "entity", req.EntityID, "kind", req.Kind, "request", req.ID)
	return nil
}

// RevokePermission clears kind on a collaborator. Every call is audited,
// even when the flag was already clear.
func (s *Service) RevokePermission(entityID string, kind Permission) error {
	if !kind.Valid() {
		return ErrUnknownPermission
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.collaborator(entityID)
	if e == nil {
		s.logger.Debug("revoke on unknown entity ignored", "entity", entityID)
		return nil
	}

	e.Permissions.set(kind, false)
	s.appendEvent(RevokedAction(kind), e.Name,
		fmt.Sprintf("Owner revoked %s permission from %s", kind, e.Name), "")
	s.logger.Debug("permission revoked", "entity", e.ID, "kind", kind)
	return nil
}

// PendingRequests returns the open requests in issuance order.
func (s *Service) PendingRequests() []PermissionRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]PermissionRequest(nil), s.requests...)
}
