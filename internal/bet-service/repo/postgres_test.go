package repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePendingAssignsIDAndPlacedAt(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bets")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	bet := &Bet{UserID: "u1", BankrollID: "bk1", ImageURL: "https://cdn/bets/1.png"}
	id, err := NewPostgres(db).CreatePending(context.Background(), bet)

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.False(t, bet.PlacedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveOnlyPendingTransitions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// aposta já liquidada: o update condicional não afeta linha nenhuma
	// e o GetByID seguinte encontra a aposta, então é conflito
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bets")).
		WithArgs("VOID", "b1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	cols := []string{"id", "user_id", "bankroll_id", "sport", "event", "bookmaker", "tipster",
		"adm_ref", "odds", "stake", "confidence_score", "status", "image_url", "placed_at",
		"result_at", "created_at", "updated_at"}
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bets")).
		WithArgs("b1", "u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("b1", "u1", "bk1", nil, nil, nil, nil, nil, nil, nil, nil,
				"WON", "https://cdn/bets/1.png", now, now, now, now))

	err = NewPostgres(db).Resolve(context.Background(), "u1", "b1", StatusVoid)

	assert.ErrorIs(t, err, ErrAlreadySettled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveMissingBetIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bets")).
		WithArgs("WON", "nope", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bets")).
		WithArgs("nope", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err = NewPostgres(db).Resolve(context.Background(), "u1", "nope", StatusWon)

	assert.ErrorIs(t, err, ErrNotFound)
}
