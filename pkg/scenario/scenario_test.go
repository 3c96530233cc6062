package scenario_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/custody/pkg/adapters/chain"
	"github.com/aretw0/custody/pkg/adapters/keys"
	"github.com/aretw0/custody/pkg/adapters/obscure"
	"github.com/aretw0/custody/pkg/core"
	"github.com/aretw0/custody/pkg/scenario"
)

const grantFlow = `
name: grant-flow
steps:
  - op: connect
    name: Alice
  - op: create_record
    title: Doc A
    description: d
    metadata: {k: v}
  - op: create_collaborator
    name: Sys1
    as: sys1
  - op: load
    entity: sys1
  - op: view
    entity: sys1
    as: before
  - op: request_permission
    entity: sys1
    kind: read
    as: req1
  - op: resolve_request
    request: req1
    granted: true
  - op: view
    entity: sys1
    expect: ok
  - op: write
    entity: sys1
    title: Hijack
    expect: rejected
`

func newRunner(t *testing.T) (*core.Service, *scenario.Runner) {
	t.Helper()
	svc, err := core.NewService(core.Config{
		Keys:   keys.New(),
		Codec:  obscure.NewHex(),
		TxRefs: chain.NewRefs(),
	})
	require.NoError(t, err)
	return svc, scenario.NewRunner(svc, nil)
}

func TestParse(t *testing.T) {
	sc, err := scenario.Parse([]byte(grantFlow))
	require.NoError(t, err)
	assert.Equal(t, "grant-flow", sc.Name)
	require.Len(t, sc.Steps, 9)
	assert.Equal(t, scenario.OpCreateRecord, sc.Steps[1].Op)
	require.NotNil(t, sc.Steps[1].Title)
	assert.Equal(t, "Doc A", *sc.Steps[1].Title)
	assert.Equal(t, []string{"k"}, sc.Steps[1].Metadata.Keys())
	assert.True(t, sc.Steps[6].Granted)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown op":     "steps:\n  - op: mint\n",
		"unknown field":  "steps:\n  - op: connect\n    nmae: Alice\n",
		"bad expect":     "steps:\n  - op: connect\n    name: A\n    expect: maybe\n",
		"not a document": "- 1\n- 2\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := scenario.Parse([]byte(src))
			assert.ErrorIs(t, err, scenario.ErrInvalidScenario)
		})
	}
}

func TestLoad_NamesAfterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - op: connect\n    name: A\n"), 0o644))

	sc, err := scenario.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, sc.Name)

	_, err = scenario.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunner_GrantFlow(t *testing.T) {
	svc, r := newRunner(t)
	sc, err := scenario.Parse([]byte(grantFlow))
	require.NoError(t, err)

	rep, err := r.Run(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, rep.OK(), "%+v", rep.Results)
	assert.Equal(t, 9, rep.Passed)

	before := rep.Results[4].View
	require.NotNil(t, before)
	assert.True(t, before.Obscured)
	assert.NotEqual(t, "Doc A", before.Record.Title)

	after := rep.Results[7].View
	require.NotNil(t, after)
	assert.False(t, after.Obscured)
	assert.Equal(t, "Doc A", after.Record.Title)

	last := rep.Results[8]
	assert.True(t, last.Rejected)
	assert.Contains(t, last.Error, "no write permission")

	aliases := r.Aliases()
	assert.Contains(t, aliases, "sys1")
	assert.Contains(t, aliases, "req1")
	e, ok := svc.Entity(aliases["sys1"])
	require.True(t, ok)
	assert.True(t, e.Permissions.Read)
	assert.Empty(t, svc.PendingRequests())
}

func TestRunner_UnexpectedRejectionFailsStep(t *testing.T) {
	_, r := newRunner(t)
	rep, err := r.Run(context.Background(), scenario.Scenario{
		Name: "no-wallet",
		Steps: []scenario.Step{
			{Op: scenario.OpCreateRecord, Title: ptr("T"), Description: ptr("d")},
			{Op: scenario.OpCreateRecord, Title: ptr("T"), Description: ptr("d"), Expect: scenario.ExpectRejected},
		},
	})
	require.NoError(t, err)
	assert.False(t, rep.OK())
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 1, rep.Passed)
	assert.False(t, rep.Results[0].OK)
	assert.True(t, rep.Results[1].OK)
}

func TestRunner_TransferByAlias(t *testing.T) {
	svc, r := newRunner(t)
	steps := []string{
		"connect name=Alice",
		`create_record title="Doc A" description=d meta.k=v`,
		"generate_owner name=Bob as=bob",
		"transfer target=bob",
		"view entity=owner",
	}
	for _, line := range steps {
		step, err := scenario.ParseLine(line)
		require.NoError(t, err, line)
		res, err := r.Exec(step)
		require.NoError(t, err, line)
		require.True(t, res.OK, "%s: %s", line, res.Error)
	}

	rec, ok := svc.GetRecord()
	require.True(t, ok)
	assert.Equal(t, "Bob", rec.CurrentOwnerName)
	v, _ := rec.Metadata.Get(core.MetaPreviousOwner + "1")
	assert.Equal(t, "Alice", v)
	assert.Len(t, svc.PreviousOwners(), 1)
}

func TestRunner_InvalidStepKeepsIndex(t *testing.T) {
	_, r := newRunner(t)
	res, err := r.Exec(scenario.Step{Op: scenario.OpConnect, Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Index)

	_, err = r.Exec(scenario.Step{Op: "mint"})
	assert.ErrorIs(t, err, scenario.ErrInvalidScenario)

	res, err = r.Exec(scenario.Step{Op: scenario.OpCreateRecord, Title: ptr("T"), Description: ptr("d")})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Index)
}

func TestRunner_ViewUnknownEntity(t *testing.T) {
	_, r := newRunner(t)
	res, err := r.Exec(scenario.Step{Op: scenario.OpView, Entity: "nobody", Expect: scenario.ExpectRejected})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Contains(t, res.Error, "unknown entity")
}

func TestRunner_Cancelled(t *testing.T) {
	_, r := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, scenario.Scenario{Steps: []scenario.Step{{Op: scenario.OpConnect, Name: "A"}}})
	assert.ErrorIs(t, err, context.Canceled)
}

func ptr(s string) *string { return &s }

func TestExampleScenariosPass(t *testing.T) {
	files, err := scenario.Expand(filepath.Join("..", "..", "examples", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			sc, err := scenario.Load(file)
			require.NoError(t, err)
			_, r := newRunner(t)
			rep, err := r.Run(context.Background(), sc)
			require.NoError(t, err)
			assert.True(t, rep.OK(), "%+v", rep.Results)
		})
	}
}
