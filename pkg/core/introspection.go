package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Connected        bool   `json:"connected"`
	Owner            string `json:"owner,omitempty"`
	HasRecord        bool   `json:"has_record"`
	HistoryLength    int    `json:"history_length"`
	Collaborators    int    `json:"collaborators"`
	MaxCollaborators int    `json:"max_collaborators"`
	PreviousOwners   int    `json:"previous_owners"`
	PotentialOwners  int    `json:"potential_owners"`
	PendingRequests  int    `json:"pending_requests"`
	TimelineLength   int    `json:"timeline_length"`
	Subscribers      int    `json:"subscribers"`
	EventBufferSize  int    `json:"event_buffer_size"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := ServiceState{
		Connected:        s.session.Connected,
		Owner:            s.session.Name,
		HasRecord:        s.record != nil,
		Collaborators:    len(s.collaborators),
		MaxCollaborators: s.maxCollaborators,
		PreviousOwners:   len(s.previousOwners),
		PotentialOwners:  len(s.candidates),
		PendingRequests:  len(s.requests),
		TimelineLength:   len(s.timeline),
		Subscribers:      len(s.subs),
		EventBufferSize:  s.eventBufferSize,
	}
	if s.record != nil {
		st.HistoryLength = len(s.record.OwnerHistory)
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "ledger"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
