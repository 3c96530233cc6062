package core

import (
	"context"
	"errors"
)

// appendEvent records a timeline entry and fans it out to subscribers.
// Must hold mu for writing.
func (s *Service) appendEvent(action, actor, description, txRef string) TimelineEvent {
	s.seq++
	ev := TimelineEvent{
		ID:             s.newID(),
		Seq:            s.seq,
		Timestamp:      s.now(),
		Action:         action,
		ActorName:      actor,
		Description:    description,
		TransactionRef: txRef,
	}
	s.timeline = append(s.timeline, ev)

	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("timeline subscriber is full, dropping event", "subscriber", id, "seq", ev.Seq)
		}
	}
	return ev
}

// ListTimeline returns every timeline entry, most recent first.
func (s *Service) ListTimeline() []TimelineEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TimelineEvent, len(s.timeline))
	for i, ev := range s.timeline {
		out[len(s.timeline)-1-i] = ev
	}
	return out
}

// TimelineLen returns the number of timeline entries.
func (s *Service) TimelineLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.timeline)
}

// Watch subscribes to timeline entries appended from now on, in issuance
// order. The channel is buffered and closed once ctx is done. A subscriber
// that falls behind by more than the buffer loses events rather than
// stalling commands.
func (s *Service) Watch(ctx context.Context) (<-chan TimelineEvent, error) {
	if ctx == nil {
		return nil, errors.New("watch requires a context")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan TimelineEvent, s.eventBufferSize)
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
		close(ch)
	}()

	return ch, nil
}
