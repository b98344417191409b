package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartstake/smartstake-core/internal/bet-service/repo"
	"github.com/smartstake/smartstake-core/pkg/contracts/events"
)

type fakeRepo struct {
	owned    map[string]string // bankrollID -> userID
	created  []*repo.Bet
	defaults int
}

func newFakeRepo() *fakeRepo { return &fakeRepo{owned: make(map[string]string)} }

func (f *fakeRepo) CreatePending(_ context.Context, b *repo.Bet) (string, error) {
	b.ID = "bet-1"
	b.Status = repo.StatusPending
	f.created = append(f.created, b)
	return b.ID, nil
}

func (f *fakeRepo) GetByID(_ context.Context, _, _ string) (*repo.Bet, error) {
	return nil, repo.ErrNotFound
}

func (f *fakeRepo) List(_ context.Context, _ string, _ repo.Filter) ([]repo.Bet, error) {
	return []repo.Bet{}, nil
}

func (f *fakeRepo) Resolve(_ context.Context, _, _, _ string) error { return repo.ErrNotFound }
func (f *fakeRepo) Delete(_ context.Context, _, _ string) error     { return repo.ErrNotFound }

func (f *fakeRepo) GetOrCreateDefault(_ context.Context, userID string) (repo.Bankroll, error) {
	f.defaults++
	return repo.Bankroll{ID: "bk-default", UserID: userID}, nil
}

func (f *fakeRepo) OwnsBankroll(_ context.Context, userID, bankrollID string) (bool, error) {
	return f.owned[bankrollID] == userID, nil
}

func (f *fakeRepo) CreateBankroll(_ context.Context, userID, name string) (repo.Bankroll, error) {
	return repo.Bankroll{ID: "bk-new", UserID: userID, Name: name}, nil
}

func (f *fakeRepo) ListBankrolls(_ context.Context, _ string) ([]repo.Bankroll, error) {
	return []repo.Bankroll{}, nil
}

func (f *fakeRepo) RotateShareToken(_ context.Context, _, _ string) (string, error) {
	return "", repo.ErrNotFound
}

type fakePublisher struct{ published []events.BetPlaced }

func (f *fakePublisher) PublishBetPlaced(_ context.Context, e events.BetPlaced) error {
	f.published = append(f.published, e)
	return nil
}

func postBet(t *testing.T, s *Server, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/bets", strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestCreateBetForeignBankrollRejected(t *testing.T) {
	fr := newFakeRepo()
	fr.owned["bk-alice"] = "alice"
	s := NewServer(zap.NewNop(), fr, &fakePublisher{})

	rec := postBet(t, s, "bob", `{"image_url":"https://x/1.png","bankroll_id":"bk-alice"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, fr.created)
}

func TestCreateBetOwnBankroll(t *testing.T) {
	fr := newFakeRepo()
	fr.owned["bk-alice"] = "alice"
	pub := &fakePublisher{}
	s := NewServer(zap.NewNop(), fr, pub)

	rec := postBet(t, s, "alice", `{"image_url":"https://x/1.png","bankroll_id":"bk-alice"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, fr.created, 1)
	assert.Equal(t, "bk-alice", fr.created[0].BankrollID)
	assert.Equal(t, 0, fr.defaults)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "bk-alice", pub.published[0].BankrollID)
}

func TestCreateBetFallsBackToDefaultBankroll(t *testing.T) {
	fr := newFakeRepo()
	s := NewServer(zap.NewNop(), fr, &fakePublisher{})

	rec := postBet(t, s, "alice", `{"image_url":"https://x/1.png"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, fr.created, 1)
	assert.Equal(t, "bk-default", fr.created[0].BankrollID)
	assert.Equal(t, 1, fr.defaults)

	var resp struct {
		BetID  string `json:"bet_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, repo.StatusPending, resp.Status)
}

func TestCreateBetMissingImage(t *testing.T) {
	s := NewServer(zap.NewNop(), newFakeRepo(), &fakePublisher{})

	rec := postBet(t, s, "alice", `{"odds":2.5}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
