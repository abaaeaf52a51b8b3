//go:build unit

package jwt

import (
	"testing"
	"time"

	"club-scheduler/internal/domain/member"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	memberID := uuid.New()

	token, err := svc.GenerateToken(memberID, member.RoleStaff)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, memberID, claims.MemberID)
	assert.Equal(t, "staff", claims.Role)
}

func TestService_ValidateToken_Failures(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	other := NewService("other-secret", time.Hour)
	expired := NewService("test-secret", -time.Minute)

	foreign, err := other.GenerateToken(uuid.New(), member.RoleMember)
	require.NoError(t, err)
	stale, err := expired.GenerateToken(uuid.New(), member.RoleMember)
	require.NoError(t, err)

	testCases := []struct {
		name  string
		token string
		want  error
	}{
		{name: "garbage", token: "not-a-token", want: ErrInvalidToken},
		{name: "wrong secret", token: foreign, want: ErrInvalidToken},
		{name: "expired", token: stale, want: ErrExpiredToken},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tc.token)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
