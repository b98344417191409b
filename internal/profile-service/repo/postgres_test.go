package repo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "referral_code", "invited_by", "stripe_customer_id",
		"subscription_active", "subscription_end", "preferred_lang", "dark_mode", "profit_target",
		"avatar_url", "onboarding_completed", "created_at", "updated_at",
	}).AddRow("u1", "mario@example.com", "AB12CD34", nil, nil,
		false, nil, "it", false, nil,
		nil, false, now, now)
}

func TestGetOrCreateExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM profiles WHERE id").
		WithArgs("u1").
		WillReturnRows(profileRows(now))
	mock.ExpectCommit()

	p := NewPostgres(db)
	prof, err := p.GetOrCreate(context.Background(), "u1", "mario@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "u1", prof.ID)
	assert.Equal(t, "AB12CD34", prof.ReferralCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateNewWithValidInvite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM profiles WHERE id").
		WithArgs("u2").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT referral_code FROM profiles WHERE referral_code").
		WithArgs("AB12CD34").
		WillReturnRows(sqlmock.NewRows([]string{"referral_code"}).AddRow("AB12CD34"))
	mock.ExpectExec("INSERT INTO profiles").
		WithArgs("u2", "luigi@example.com", sqlmock.AnyArg(), "AB12CD34", "it").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := NewPostgres(db)
	prof, err := p.GetOrCreate(context.Background(), "u2", "luigi@example.com", "AB12CD34")
	require.NoError(t, err)
	require.NotNil(t, prof.InvitedBy)
	assert.Equal(t, "AB12CD34", *prof.InvitedBy)
	assert.Len(t, prof.ReferralCode, 8)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateNewInvalidInviteIgnored(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM profiles WHERE id").
		WithArgs("u3").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT referral_code FROM profiles WHERE referral_code").
		WithArgs("NOPE0000").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO profiles").
		WithArgs("u3", "peach@example.com", sqlmock.AnyArg(), nil, "it").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := NewPostgres(db)
	prof, err := p.GetOrCreate(context.Background(), "u3", "peach@example.com", "NOPE0000")
	require.NoError(t, err)
	assert.Nil(t, prof.InvitedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM profiles WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	p := NewPostgres(db)
	_, err = p.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePreferencesNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	lang := "en"
	mock.ExpectExec("UPDATE profiles SET").
		WithArgs("en", nil, nil, nil, nil, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	p := NewPostgres(db)
	err = p.UpdatePreferences(context.Background(), "missing", PreferencesUpdate{PreferredLang: &lang})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListReferrals(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT email, subscription_active, created_at").
		WithArgs("AB12CD34").
		WillReturnRows(sqlmock.NewRows([]string{"email", "subscription_active", "created_at"}).
			AddRow("a@example.com", true, now).
			AddRow("b@example.com", false, now))

	p := NewPostgres(db)
	refs, err := p.ListReferrals(context.Background(), "AB12CD34")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.True(t, refs[0].SubscriptionActive)
	assert.False(t, refs[1].SubscriptionActive)
}
