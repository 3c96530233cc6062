package core

// RecordView is a record as a given entity is allowed to see it.
type RecordView struct {
	EntityID string `json:"entity_id" yaml:"entity_id"`
	Role     Role   `json:"role" yaml:"role"`
	// Loaded is false when the entity has never loaded the record; the
	// remaining fields are then empty.
	Loaded bool `json:"loaded" yaml:"loaded"`
	// Obscured is true when every textual field went through the codec.
	Obscured bool   `json:"obscured" yaml:"obscured"`
	Record   Record `json:"record" yaml:"record"`
}

// View renders the record for entityID. Owners see the live record,
// previous owners see their frozen snapshot, and collaborators see the copy
// they last loaded, obscured unless they currently hold read permission.
func (s *Service) View(entityID string) (RecordView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.lookup(entityID)
	if !ok {
		return RecordView{}, false
	}

	v := RecordView{EntityID: e.ID, Role: e.Role}
	if !e.HasLoadedData || e.CachedData == nil {
		return v, true
	}
	v.Loaded = true
	v.Record = *e.CachedData

	if !e.Effective().Read {
		v.Record = ObscureRecord(s.codec, v.Record)
		v.Obscured = true
	}
	return v, true
}

// ObscureRecord returns a copy of rec with every textual field passed
// through codec. Metadata keys and timestamps are kept as they are.
func ObscureRecord(codec ObscureCodec, rec Record) Record {
	out := rec.Clone()
	out.Title = codec.Obscure(rec.Title)
	out.Description = codec.Obscure(rec.Description)
	out.CurrentOwnerName = codec.Obscure(rec.CurrentOwnerName)
	out.TransactionRef = codec.Obscure(rec.TransactionRef)
	for i := range out.Metadata {
		out.Metadata[i].Value = codec.Obscure(out.Metadata[i].Value)
	}
	for i := range out.OwnerHistory {
		h := &out.OwnerHistory[i]
		h.PreviousOwnerName = codec.Obscure(h.PreviousOwnerName)
		h.PreviousOwnerPublicKey = codec.Obscure(h.PreviousOwnerPublicKey)
		h.TransactionRef = codec.Obscure(h.TransactionRef)
	}
	return out
}
