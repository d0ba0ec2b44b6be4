package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestJWTService(t *testing.T, secret string, at time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(secret, time.Hour, func() time.Time { return at })
	require.NoError(t, err)
	return svc
}

func signRaw(t *testing.T, claims jwtCustomClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 0})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	learnerID := uuid.New()
	svc := newTestJWTService(t, testSecret, fixedTime)

	token, err := svc.GenerateToken(context.Background(), learnerID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, learnerID, claims.LearnerID)
	assert.Equal(t, learnerID.String(), claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	// Compare Unix timestamps to avoid timezone issues
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	learnerID := uuid.New()

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) (JWTService, string)
		wantErr   error
	}{
		{
			name: "valid token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, testSecret, fixedTime)
				token, err := svc.GenerateToken(context.Background(), learnerID)
				require.NoError(t, err)
				return svc, token
			},
		},
		{
			name: "within clock skew after expiry",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token, err := newTestJWTService(t, testSecret, fixedTime).GenerateToken(context.Background(), learnerID)
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, fixedTime.Add(time.Hour+time.Minute)), token
			},
		},
		{
			name: "expired token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token, err := newTestJWTService(t, testSecret, fixedTime).GenerateToken(context.Background(), learnerID)
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, fixedTime.Add(2*time.Hour)), token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "not yet valid",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token, err := newTestJWTService(t, testSecret, fixedTime).GenerateToken(context.Background(), learnerID)
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, fixedTime.Add(-10*time.Minute)), token
			},
			wantErr: ErrTokenNotYetValid,
		},
		{
			name: "invalid signature",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token, err := newTestJWTService(t, testSecret, fixedTime).GenerateToken(context.Background(), learnerID)
				require.NoError(t, err)
				return newTestJWTService(t, wrongSecret, fixedTime), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, fixedTime), "this.is.not.a.valid.jwt.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong token type",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, fixedTime), signRaw(t, jwtCustomClaims{
					TokenType: "refresh",
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   learnerID.String(),
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				})
			},
			wantErr: ErrWrongTokenType,
		},
		{
			name: "subject is not a uuid",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, fixedTime), signRaw(t, jwtCustomClaims{
					TokenType: TokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   "alice",
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				})
			},
			wantErr: ErrInvalidSubject,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tt.setupFunc(t)
			claims, err := svc.ValidateToken(context.Background(), token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, learnerID, claims.LearnerID)
		})
	}
}
