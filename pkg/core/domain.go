// Package core holds the custody domain: the shared record, the entities that
// may see it, and the state machine that moves permissions and ownership between them.
package core

import "time"

// OwnerID is the entity id that always addresses the connected owner.
const OwnerID = "owner"

// Permission is the kind of access an entity can request or hold.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

// Valid reports whether p is one of the known permission kinds.
func (p Permission) Valid() bool {
	return p == PermissionRead || p == PermissionWrite
}

// Label returns the capitalised form used in timeline actions.
func (p Permission) Label() string {
	switch p {
	case PermissionRead:
		return "Read"
	case PermissionWrite:
		return "Write"
	}
	return string(p)
}

// Permissions is the pair of access flags held by an entity.
type Permissions struct {
	Read  bool `json:"read" yaml:"read"`
	Write bool `json:"write" yaml:"write"`
}

// Has reports whether the flag for kind is set.
func (p Permissions) Has(kind Permission) bool {
	switch kind {
	case PermissionRead:
		return p.Read
	case PermissionWrite:
		return p.Write
	}
	return false
}

func (p *Permissions) set(kind Permission, value bool) {
	switch kind {
	case PermissionRead:
		p.Read = value
	case PermissionWrite:
		p.Write = value
	}
}

// Role tags an entity with the part it plays around the record.
type Role string

const (
	RoleOwner         Role = "owner"
	RoleCollaborator  Role = "collaborator"
	RolePreviousOwner Role = "previousOwner"
)

// KeyPair is an opaque public/private key pair.
type KeyPair struct {
	PublicKey  string `json:"public_key" yaml:"public_key"`
	PrivateKey string `json:"private_key" yaml:"private_key"`
}

// OwnershipEvent is the immutable snapshot taken when ownership moves.
type OwnershipEvent struct {
	PreviousOwnerName      string    `json:"previous_owner_name" yaml:"previous_owner_name"`
	PreviousOwnerPublicKey string    `json:"previous_owner_public_key" yaml:"previous_owner_public_key"`
	TransferredAt          time.Time `json:"transferred_at" yaml:"transferred_at"`
	TransactionRef         string    `json:"transaction_ref" yaml:"transaction_ref"`
}

// Record is the single shared data object.
type Record struct {
	Title            string           `json:"title" yaml:"title"`
	Description      string           `json:"description" yaml:"description"`
	Metadata         Metadata         `json:"metadata" yaml:"metadata"`
	CreatedAt        time.Time        `json:"created_at" yaml:"created_at"`
	CurrentOwnerName string           `json:"current_owner_name" yaml:"current_owner_name"`
	TransactionRef   string           `json:"transaction_ref" yaml:"transaction_ref"`
	OwnerHistory     []OwnershipEvent `json:"owner_history" yaml:"owner_history"`
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.Metadata = r.Metadata.Clone()
	if r.OwnerHistory != nil {
		out.OwnerHistory = make([]OwnershipEvent, len(r.OwnerHistory))
		copy(out.OwnerHistory, r.OwnerHistory)
	}
	return out
}

// Entity is any participant holding a key pair: the owner, a collaborating
// system, or a previous owner.
type Entity struct {
	ID            string      `json:"id" yaml:"id"`
	Name          string      `json:"name" yaml:"name"`
	PublicKey     string      `json:"public_key" yaml:"public_key"`
	PrivateKey    string      `json:"private_key,omitempty" yaml:"private_key,omitempty"`
	Permissions   Permissions `json:"permissions" yaml:"permissions"`
	CachedData    *Record     `json:"cached_data,omitempty" yaml:"cached_data,omitempty"`
	HasLoadedData bool        `json:"has_loaded_data" yaml:"has_loaded_data"`
	Role          Role        `json:"role" yaml:"role"`
}

// Effective returns the permissions the entity actually holds. Owners always
// have full access and previous owners are frozen to read-only, whatever the
// stored flags say.
func (e Entity) Effective() Permissions {
	switch e.Role {
	case RoleOwner:
		return Permissions{Read: true, Write: true}
	case RolePreviousOwner:
		return Permissions{Read: true, Write: false}
	}
	return e.Permissions
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	out := e
	if e.CachedData != nil {
		rec := e.CachedData.Clone()
		out.CachedData = &rec
	}
	return out
}

// PotentialOwner is a generated identity that may receive the record.
type PotentialOwner struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	PublicKey string `json:"public_key" yaml:"public_key"`
}

// PermissionRequest is a pending ask for access.
type PermissionRequest struct {
	ID         string     `json:"id" yaml:"id"`
	EntityID   string     `json:"entity_id" yaml:"entity_id"`
	EntityName string     `json:"entity_name" yaml:"entity_name"`
	Kind       Permission `json:"kind" yaml:"kind"`
	Timestamp  time.Time  `json:"timestamp" yaml:"timestamp"`
}

// TimelineEvent is one append-only audit entry.
type TimelineEvent struct {
	ID             string    `json:"id" yaml:"id"`
	Seq            uint64    `json:"seq" yaml:"seq"`
	Timestamp      time.Time `json:"timestamp" yaml:"timestamp"`
	Action         string    `json:"action" yaml:"action"`
	ActorName      string    `json:"actor_name" yaml:"actor_name"`
	Description    string    `json:"description" yaml:"description"`
	TransactionRef string    `json:"transaction_ref,omitempty" yaml:"transaction_ref,omitempty"`
}

// String implements lifecycle.Event.
func (e TimelineEvent) String() string {
	if e.TransactionRef != "" {
		return e.Action + " [" + e.ActorName + "] " + e.Description + " (tx " + e.TransactionRef + ")"
	}
	return e.Action + " [" + e.ActorName + "] " + e.Description
}

// Session is the connected owner identity.
type Session struct {
	Connected  bool   `json:"connected" yaml:"connected"`
	Name       string `json:"name" yaml:"name"`
	Address    string `json:"address" yaml:"address"`
	PublicKey  string `json:"public_key" yaml:"public_key"`
	PrivateKey string `json:"private_key,omitempty" yaml:"private_key,omitempty"`
}

// Timeline actions.
const (
	ActionWalletConnected   = "Wallet Connected"
	ActionRecordCreated     = "Record Created"
	ActionSystemCreated     = "System Created"
	ActionOwnerGenerated    = "Owner Wallet Generated"
	ActionDataUpdated       = "Data Updated"
	ActionRecordTransferred = "Record Transferred"
)

// GrantedAction is the timeline action for a granted permission of kind.
func GrantedAction(kind Permission) string {
	return kind.Label() + " Permission Granted"
}

// RevokedAction is the timeline action for a revoked permission of kind.
func RevokedAction(kind Permission) string {
	return kind.Label() + " Permission Revoked"
}
