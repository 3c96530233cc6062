package core

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxCollaborators caps how many collaborating systems may exist.
// A Config may lower the cap but never raise it.
const DefaultMaxCollaborators = 7

// DefaultEventBuffer is the per-subscriber timeline buffer.
const DefaultEventBuffer = 100

// Config wires the ports and limits of a Service.
type Config struct {
	Keys   KeyProvider
	Codec  ObscureCodec
	TxRefs TransactionRefSource

	// Clock defaults to time.Now.
	Clock func() time.Time
	// NewID defaults to random UUIDs.
	NewID func() string

	// MaxCollaborators above DefaultMaxCollaborators is clamped to it.
	MaxCollaborators int
	EventBuffer      int
	Logger           *slog.Logger
}

// Service is the single store behind every custody command. All mutations
// are serialized through mu, so a command and its timeline entry are always
// observed together.
type Service struct {
	mu sync.RWMutex

	keys   KeyProvider
	codec  ObscureCodec
	txRefs TransactionRefSource
	clock  func() time.Time
	newID  func() string
	logger *slog.Logger

	maxCollaborators int
	eventBufferSize  int

	session        Session
	record         *Record
	collaborators  []*Entity
	previousOwners []*Entity
	candidates     []PotentialOwner
	requests       []PermissionRequest
	timeline       []TimelineEvent
	seq            uint64

	subs    map[uint64]chan TimelineEvent
	nextSub uint64
}

// NewService creates a new Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Keys == nil {
		return nil, fmt.Errorf("%w: key provider", ErrMissingDependency)
	}
	if cfg.Codec == nil {
		return nil, fmt.Errorf("%w: obscure codec", ErrMissingDependency)
	}
	if cfg.TxRefs == nil {
		return nil, fmt.Errorf("%w: transaction reference source", ErrMissingDependency)
	}

	s := &Service{
		keys:             cfg.Keys,
		codec:            cfg.Codec,
		txRefs:           cfg.TxRefs,
		clock:            cfg.Clock,
		newID:            cfg.NewID,
		logger:           cfg.Logger,
		maxCollaborators: cfg.MaxCollaborators,
		eventBufferSize:  cfg.EventBuffer,
		subs:             make(map[uint64]chan TimelineEvent),
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.maxCollaborators <= 0 || s.maxCollaborators > DefaultMaxCollaborators {
		s.maxCollaborators = DefaultMaxCollaborators
	}
	if s.eventBufferSize <= 0 {
		s.eventBufferSize = DefaultEventBuffer
	}
	return s, nil
}

// MaxCollaborators returns the configured collaborator cap.
func (s *Service) MaxCollaborators() int {
	return s.maxCollaborators
}

// GetRecord returns a copy of the record, if one exists.
func (s *Service) GetRecord() (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.record == nil {
		return Record{}, false
	}
	return s.record.Clone(), true
}

// ListEntities returns the owner (when connected), the collaborators and the
// previous owners, in that order. Private keys are redacted; use Keys.
func (s *Service) ListEntities() []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entity
	if s.session.Connected {
		out = append(out, redact(s.ownerEntity()))
	}
	for _, e := range s.collaborators {
		out = append(out, redact(e.Clone()))
	}
	for _, e := range s.previousOwners {
		out = append(out, redact(e.Clone()))
	}
	return out
}

// Collaborators returns the collaborating systems with private keys redacted.
func (s *Service) Collaborators() []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntities(s.collaborators)
}

// PreviousOwners returns the frozen snapshots of earlier owners.
func (s *Service) PreviousOwners() []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntities(s.previousOwners)
}

// Entity returns a single entity by id, private key redacted.
func (s *Service) Entity(id string) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.lookup(id)
	if !ok {
		return Entity{}, false
	}
	return redact(e), true
}

// Keys returns the key pair held by an entity. It is the only query that
// exposes a private key and is meant for the key holder itself.
func (s *Service) Keys(id string) (KeyPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.lookup(id)
	if !ok {
		return KeyPair{}, false
	}
	return KeyPair{PublicKey: e.PublicKey, PrivateKey: e.PrivateKey}, true
}

// lookup resolves any entity id. Must hold mu.
func (s *Service) lookup(id string) (Entity, bool) {
	if id == OwnerID {
		if !s.session.Connected {
			return Entity{}, false
		}
		return s.ownerEntity(), true
	}
	if e := s.collaborator(id); e != nil {
		return e.Clone(), true
	}
	if e := s.previousOwner(id); e != nil {
		return e.Clone(), true
	}
	return Entity{}, false
}

// ownerEntity derives the owner entity from the session. Must hold mu.
func (s *Service) ownerEntity() Entity {
	e := Entity{
		ID:            OwnerID,
		Name:          s.session.Name,
		PublicKey:     s.session.PublicKey,
		PrivateKey:    s.session.PrivateKey,
		Permissions:   Permissions{Read: true, Write: true},
		HasLoadedData: true,
		Role:          RoleOwner,
	}
	if s.record != nil {
		rec := s.record.Clone()
		e.CachedData = &rec
	}
	return e
}

func (s *Service) collaborator(id string) *Entity {
	for _, e := range s.collaborators {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (s *Service) previousOwner(id string) *Entity {
	for _, e := range s.previousOwners {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (s *Service) now() time.Time {
	return s.clock()
}

func redact(e Entity) Entity {
	e.PrivateKey = ""
	return e
}

func cloneEntities(in []*Entity) []Entity {
	out := make([]Entity, 0, len(in))
	for _, e := range in {
		out = append(out, redact(e.Clone()))
	}
	return out
}
