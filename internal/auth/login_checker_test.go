package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func TestLoginChecker_IsLogged(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	now := time.Now()
	loginChecker := NewLoginChecker(time.Hour, db)
	loginChecker.now = func() time.Time { return now }
	require.NotNil(t, loginChecker)

	ctx := context.Background()

	mock.ExpectGet(sessionKeyPrefix + "invalid token").SetErr(redis.Nil)
	isLogged, err := loginChecker.IsLogged(ctx, "invalid token")
	require.NoError(t, err)
	assert.False(t, isLogged)

	mock.ExpectGet(sessionKeyPrefix + "invalid token").SetErr(redis.Nil)
	isLogged, err = loginChecker.IsLogged(ctx, "invalid token")
	require.NoError(t, err)
	assert.False(t, isLogged) // idempotent

	testToken := "test-token"
	sessionKey := sessionKeyPrefix + testToken

	mock.ExpectGet(sessionKey).SetVal(fmt.Sprintf("%d", now.Add(-time.Minute).Unix()))
	isLogged, err = loginChecker.IsLogged(ctx, testToken)
	require.NoError(t, err)
	assert.True(t, isLogged)

	// expired
	mock.ExpectGet(sessionKey).SetVal(fmt.Sprintf("%d", now.Add(-2*time.Hour).Unix()))
	isLogged, err = loginChecker.IsLogged(ctx, testToken)
	require.NoError(t, err)
	assert.False(t, isLogged)

	// logged out
	mock.ExpectGet(sessionKey).SetVal("0")
	isLogged, err = loginChecker.IsLogged(ctx, testToken)
	require.NoError(t, err)
	assert.False(t, isLogged)

	mock.ExpectGet(sessionKey).SetVal("not-a-number")
	_, err = loginChecker.IsLogged(ctx, testToken)
	require.Error(t, err)

	mock.ExpectGet(sessionKey).SetErr(errors.New("conn refused"))
	_, err = loginChecker.IsLogged(ctx, testToken)
	require.EqualError(t, err, "conn refused")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginTestChecker(t *testing.T) {
	checker := NewLoginTestChecker()
	checker.LoggedSessions["t1"] = true

	isLogged, err := checker.IsLogged(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, isLogged)

	isLogged, err = checker.IsLogged(context.Background(), "t2")
	require.NoError(t, err)
	assert.False(t, isLogged)
}
