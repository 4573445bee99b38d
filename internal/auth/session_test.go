package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_IssueAndParse(t *testing.T) {
	svc := NewSessionService("test-secret", time.Hour)

	session, err := svc.Issue(7, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.NotEmpty(t, session.Claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

	claims, err := svc.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, session.Claims.ID, claims.ID)
	assert.InDelta(t, time.Hour.Seconds(), svc.Remaining(claims).Seconds(), 5)
}

func TestSessionService_UniqueIDs(t *testing.T) {
	svc := NewSessionService("test-secret", time.Hour)
	a, err := svc.Issue(1, "alice")
	require.NoError(t, err)
	b, err := svc.Issue(1, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, a.Claims.ID, b.Claims.ID)
}

func TestSessionService_RejectsForeignAndExpiredTokens(t *testing.T) {
	svc := NewSessionService("test-secret", time.Hour)

	other, err := NewSessionService("other-secret", time.Hour).Issue(1, "alice")
	require.NoError(t, err)
	_, err = svc.Parse(other.Token)
	assert.Error(t, err)

	expired := NewSessionService("test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(1, "alice")
	require.NoError(t, err)
	_, err = svc.Parse(old.Token)
	assert.Error(t, err)

	_, err = svc.Parse("not-a-token")
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))

	again, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")

	assert.NotPanics(t, func() { BurnPasswordCheck("anything") })
}
