package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/custody/pkg/core"
)

func TestListTimeline_MostRecentFirst(t *testing.T) {
	f := newFixture(t).withRecord(t)
	_, err := f.svc.CreateCollaborator("Sys1")
	require.NoError(t, err)

	tl := f.svc.ListTimeline()
	require.Len(t, tl, 3)
	assert.Equal(t, core.ActionSystemCreated, tl[0].Action)
	assert.Equal(t, core.ActionRecordCreated, tl[1].Action)
	assert.Equal(t, core.ActionWalletConnected, tl[2].Action)
	for i := 1; i < len(tl); i++ {
		assert.Greater(t, tl[i-1].Seq, tl[i].Seq)
		assert.False(t, tl[i-1].Timestamp.Before(tl[i].Timestamp))
	}
}

func TestWatch_DeliversInIssuanceOrder(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := f.svc.Watch(ctx)
	require.NoError(t, err)

	f.withRecord(t)

	var got []string
	for i := 0; i < 2; i++ {
		select {
		case ev := <-stream:
			got = append(got, ev.Action)
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for timeline event")
		}
	}
	assert.Equal(t, []string{core.ActionWalletConnected, core.ActionRecordCreated}, got)

	state := f.svc.State().(core.ServiceState)
	assert.Equal(t, 1, state.Subscribers)
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := f.svc.Watch(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-stream:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("stream was not closed")
	}

	// Commands keep working once the subscriber is gone.
	_, err = f.svc.Connect("Alice")
	assert.NoError(t, err)
}

func TestWatch_SlowSubscriberDoesNotBlock(t *testing.T) {
	svc, err := core.NewService(core.Config{
		Keys:        core.KeyProviderFunc(func() (core.KeyPair, error) { return core.KeyPair{PublicKey: "P", PrivateKey: "S"}, nil }),
		Codec:       core.ObscureFunc(func(s string) string { return "#" + s }),
		TxRefs:      core.TransactionRefFunc(func() (string, error) { return "TX", nil }),
		EventBuffer: 1,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream, err := svc.Watch(ctx)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			_, _ = svc.Connect("Alice")
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("commands blocked on a slow subscriber")
	}
	assert.Equal(t, 5, svc.TimelineLen())
	assert.Len(t, stream, 1)
}

func TestWatch_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Watch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
