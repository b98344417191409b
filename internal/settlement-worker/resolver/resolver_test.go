package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartstake/smartstake-core/pkg/contracts/events"
)

type fakeStore struct {
	pending    []PendingBet
	listErr    error
	updateErr  map[string]error
	notPending map[string]bool

	gotCutoff time.Time
	listCalls int
	settled   map[string]string
}

func (f *fakeStore) ListPendingOlderThan(_ context.Context, cutoff time.Time) ([]PendingBet, error) {
	f.listCalls++
	f.gotCutoff = cutoff
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.pending, nil
}

func (f *fakeStore) SettleIfPending(_ context.Context, betID, status string, _ time.Time) (bool, error) {
	if err := f.updateErr[betID]; err != nil {
		return false, err
	}
	if f.notPending[betID] {
		return false, nil
	}
	if f.settled == nil {
		f.settled = make(map[string]string)
	}
	f.settled[betID] = status
	return true, nil
}

type fixedSource struct {
	outcome Outcome
	err     error
}

func (s fixedSource) Decide(context.Context, PendingBet) (Outcome, error) {
	return s.outcome, s.err
}

func (s fixedSource) Name() string { return "fixed" }

func newResolver(store Store, source OutcomeSource) *Resolver {
	return &Resolver{
		Log:           zap.NewNop(),
		Store:         store,
		Source:        source,
		MaxPendingAge: 24 * time.Hour,
	}
}

func pendings(ids ...string) []PendingBet {
	out := make([]PendingBet, 0, len(ids))
	for _, id := range ids {
		out = append(out, PendingBet{ID: id, UserID: "user-1", PlacedAt: time.Now().Add(-48 * time.Hour)})
	}
	return out
}

func TestRunSettlesAllCandidates(t *testing.T) {
	store := &fakeStore{pending: pendings("b1", "b2", "b3")}
	r := newResolver(store, fixedSource{outcome: OutcomeWon})

	var emitted []events.BetSettled
	r.OnAfterSettle = func(ev events.BetSettled) { emitted = append(emitted, ev) }

	rep, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Report{Checked: 3, Updated: 3}, rep)
	assert.Equal(t, map[string]string{"b1": StatusWon, "b2": StatusWon, "b3": StatusWon}, store.settled)
	require.Len(t, emitted, 3)
	assert.Equal(t, "fixed", emitted[0].Source)
	assert.Equal(t, "user-1", emitted[0].UserID)
}

func TestRunCutoffComputedOncePerRun(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	r := newResolver(store, fixedSource{outcome: OutcomeLost})
	r.Now = func() time.Time { return now }

	_, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)
	assert.Equal(t, now.Add(-24*time.Hour), store.gotCutoff)
}

func TestRunIdempotentWhenNothingPending(t *testing.T) {
	store := &fakeStore{pending: pendings("b1")}
	r := newResolver(store, fixedSource{outcome: OutcomeLost})

	first, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Updated)

	// segunda execução sem apostas novas: seleção vazia, nada a atualizar
	store.pending = nil
	second, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{}, second)
}

func TestRunUnknownOutcomeLeavesPending(t *testing.T) {
	store := &fakeStore{pending: pendings("b1", "b2")}
	r := newResolver(store, fixedSource{outcome: OutcomeUnknown})

	rep, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Report{Checked: 2, Skipped: 2}, rep)
	assert.Empty(t, store.settled)
}

func TestRunDecideFailureSkipsRow(t *testing.T) {
	store := &fakeStore{pending: pendings("b1")}
	r := newResolver(store, fixedSource{err: errors.New("results api down")})

	rep, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Report{Checked: 1, Skipped: 1}, rep)
}

func TestRunUpdateFailureContinues(t *testing.T) {
	store := &fakeStore{
		pending:   pendings("b1", "b2", "b3"),
		updateErr: map[string]error{"b2": errors.New("write failed")},
	}
	r := newResolver(store, fixedSource{outcome: OutcomeLost})

	var stages []string
	r.OnError = func(stage string) { stages = append(stages, stage) }

	rep, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, rep.Checked)
	assert.Equal(t, 2, rep.Updated)
	assert.Equal(t, []string{"update"}, stages)
	assert.Contains(t, store.settled, "b1")
	assert.Contains(t, store.settled, "b3")
}

func TestRunListFailureAborts(t *testing.T) {
	store := &fakeStore{listErr: errors.New("pg down")}
	r := newResolver(store, fixedSource{outcome: OutcomeWon})

	rep, err := r.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, Report{}, rep)
}

func TestRunConcurrentSettleCountsOnce(t *testing.T) {
	// outra execução venceu a corrida: o update condicional reporta zero linhas
	store := &fakeStore{
		pending:    pendings("b1", "b2"),
		notPending: map[string]bool{"b1": true},
	}
	r := newResolver(store, fixedSource{outcome: OutcomeWon})

	rep, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Report{Checked: 2, Updated: 1, Skipped: 1}, rep)
	assert.NotContains(t, store.settled, "b1")
}

func TestRandomSourceNeverUnknown(t *testing.T) {
	src := NewRandomSource(0.6)
	for i := 0; i < 100; i++ {
		out, err := src.Decide(context.Background(), PendingBet{})
		require.NoError(t, err)
		assert.NotEqual(t, OutcomeUnknown, out)
	}
}
