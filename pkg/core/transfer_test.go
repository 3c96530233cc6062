package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/custody/pkg/core"
)

func TestGenerateAndRemoveOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GenerateOwner("")
	assert.ErrorIs(t, err, core.ErrMissingField)

	bob, err := f.svc.GenerateOwner("Bob")
	require.NoError(t, err)
	carol, err := f.svc.GenerateOwner("Carol")
	require.NoError(t, err)
	assert.Equal(t, core.ActionOwnerGenerated, f.svc.ListTimeline()[0].Action)
	require.Len(t, f.svc.PotentialOwners(), 2)

	before := f.svc.TimelineLen()
	require.NoError(t, f.svc.RemovePotentialOwner(bob.ID))
	require.NoError(t, f.svc.RemovePotentialOwner("ghost"))
	assert.Equal(t, []core.PotentialOwner{carol}, f.svc.PotentialOwners())
	assert.Equal(t, before, f.svc.TimelineLen())
}

func TestTransfer_Rejections(t *testing.T) {
	f := newFixture(t)
	bob, err := f.svc.GenerateOwner("Bob")
	require.NoError(t, err)
	before := f.svc.TimelineLen()

	_, err = f.svc.Transfer(bob.ID)
	assert.ErrorIs(t, err, core.ErrNoRecord)
	assert.Equal(t, before, f.svc.TimelineLen())

	_, err = f.svc.Connect("Alice")
	require.NoError(t, err)
	_, err = f.svc.CreateRecord("Doc A", "d", nil)
	require.NoError(t, err)
	before = f.svc.TimelineLen()

	_, err = f.svc.Transfer("")
	assert.ErrorIs(t, err, core.ErrNoTarget)
	_, err = f.svc.Transfer("ghost")
	assert.ErrorIs(t, err, core.ErrUnknownTarget)

	assert.Equal(t, before, f.svc.TimelineLen())
	rec, _ := f.svc.GetRecord()
	assert.Empty(t, rec.OwnerHistory)
	assert.Equal(t, "Alice", f.svc.Session().Name)
}

func TestTransfer(t *testing.T) {
	f := newFixture(t).withRecord(t)
	alice := f.svc.Session()

	sys1, err := f.svc.CreateCollaborator("Sys1")
	require.NoError(t, err)
	sys2, err := f.svc.CreateCollaborator("Sys2")
	require.NoError(t, err)
	for _, id := range []string{sys1.ID, sys2.ID} {
		for _, kind := range []core.Permission{core.PermissionRead, core.PermissionWrite} {
			req, err := f.svc.RequestPermission(id, kind)
			require.NoError(t, err)
			require.NoError(t, f.svc.ResolveRequest(req.ID, true))
		}
	}
	pending, err := f.svc.RequestPermission(sys1.ID, core.PermissionRead)
	require.NoError(t, err)

	bob, err := f.svc.GenerateOwner("Bob")
	require.NoError(t, err)
	before := f.svc.TimelineLen()

	ev, err := f.svc.Transfer(bob.ID)
	require.NoError(t, err)

	assert.Equal(t, "Alice", ev.PreviousOwnerName)
	assert.Equal(t, alice.PublicKey, ev.PreviousOwnerPublicKey)

	rec, _ := f.svc.GetRecord()
	require.Len(t, rec.OwnerHistory, 1)
	assert.Equal(t, ev, rec.OwnerHistory[0])
	assert.Equal(t, "Bob", rec.CurrentOwnerName)

	for key, want := range map[string]string{
		"previousOwner_1":          "Alice",
		"previousOwnerPublicKey_1": alice.PublicKey,
		"transactionHash_1":        ev.TransactionRef,
	} {
		got, ok := rec.Metadata.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
	_, ok := rec.Metadata.Get("transferDate_1")
	assert.True(t, ok)

	sess := f.svc.Session()
	assert.Equal(t, "Bob", sess.Name)
	assert.Equal(t, bob.PublicKey, sess.PublicKey)
	assert.NotEqual(t, alice.PrivateKey, sess.PrivateKey)
	assert.Empty(t, f.svc.PotentialOwners())

	for _, c := range f.svc.Collaborators() {
		assert.Equal(t, core.Permissions{}, c.Permissions, c.Name)
	}
	assert.Equal(t, []core.PermissionRequest{pending}, f.svc.PendingRequests())

	prev := f.svc.PreviousOwners()
	require.Len(t, prev, 1)
	assert.Equal(t, "Alice", prev[0].Name)
	assert.Equal(t, core.RolePreviousOwner, prev[0].Role)
	assert.Equal(t, core.Permissions{Read: true, Write: false}, prev[0].Permissions)
	assert.Equal(t, core.Permissions{Read: true, Write: false}, prev[0].Effective())
	require.NotNil(t, prev[0].CachedData)
	assert.Len(t, prev[0].CachedData.OwnerHistory, 1)
	assert.Equal(t, "Bob", prev[0].CachedData.CurrentOwnerName)

	tl := f.svc.ListTimeline()
	require.Len(t, tl, before+1)
	assert.Equal(t, core.ActionRecordTransferred, tl[0].Action)
	assert.Equal(t, "Bob", tl[0].ActorName)
	assert.Equal(t, ev.TransactionRef, tl[0].TransactionRef)
}

func TestTransfer_RepeatedKeepsHistoryAndFreezesSnapshots(t *testing.T) {
	f := newFixture(t).withRecord(t)

	bob, err := f.svc.GenerateOwner("Bob")
	require.NoError(t, err)
	_, err = f.svc.Transfer(bob.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Write(core.OwnerID, core.Patch{Title: ptr("Bob's doc")}))

	carol, err := f.svc.GenerateOwner("Carol")
	require.NoError(t, err)
	_, err = f.svc.Transfer(carol.ID)
	require.NoError(t, err)

	rec, _ := f.svc.GetRecord()
	require.Len(t, rec.OwnerHistory, 2)
	assert.Equal(t, "Alice", rec.OwnerHistory[0].PreviousOwnerName)
	assert.Equal(t, "Bob", rec.OwnerHistory[1].PreviousOwnerName)

	v, _ := rec.Metadata.Get("previousOwner_2")
	assert.Equal(t, "Bob", v)
	v, _ = rec.Metadata.Get("previousOwner_1")
	assert.Equal(t, "Alice", v)

	prev := f.svc.PreviousOwners()
	require.Len(t, prev, 2)
	// Alice's snapshot predates Bob's write.
	assert.Equal(t, "Doc A", prev[0].CachedData.Title)
	assert.Len(t, prev[0].CachedData.OwnerHistory, 1)
	assert.Equal(t, "Bob's doc", prev[1].CachedData.Title)
	assert.Len(t, prev[1].CachedData.OwnerHistory, 2)
	assert.Equal(t, "Bob", prev[0].CachedData.CurrentOwnerName)
	assert.Equal(t, "Carol", prev[1].CachedData.CurrentOwnerName)
}
