package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotary_IssueToken(t *testing.T) {
	var notary = NewNotary("test_secret")
	var user = User{Id: 7, Username: "morandi", Display: "Giorgio", AvatarColor: "#60a5fa"}

	t.Run("issued tokens parse back to their claims", func(t *testing.T) {
		token, err := notary.IssueToken(user)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := notary.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.Id, claims.UserId)
		assert.Equal(t, user.Username, claims.Username)
	})

	t.Run("expiry sits thirty days out", func(t *testing.T) {
		token, err := notary.IssueToken(user)
		require.NoError(t, err)

		claims, err := notary.ParseToken(token)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
	})
}

func TestNotary_ParseToken(t *testing.T) {
	var notary = NewNotary("test_secret")
	var user = User{Id: 7, Username: "morandi"}

	t.Run("rejects tampered payloads", func(t *testing.T) {
		token, err := notary.IssueToken(user)
		require.NoError(t, err)

		var parts = strings.Split(token, ".")
		require.Len(t, parts, 3)
		// swap in a forged payload while keeping the original signature
		forged := parts[0] + "." + parts[1][:len(parts[1])-2] + "xx." + parts[2]

		_, err = notary.ParseToken(forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		stranger, err := NewNotary("other_secret").IssueToken(user)
		require.NoError(t, err)

		_, err = notary.ParseToken(stranger)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		var stale = jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			UserId:   user.Id,
			Username: user.Username,
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-31 * 24 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
			},
		})
		signed, err := stale.SignedString([]byte("test_secret"))
		require.NoError(t, err)

		_, err = notary.ParseToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := notary.ParseToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
