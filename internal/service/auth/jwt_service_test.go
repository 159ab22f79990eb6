package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/hanzi-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestService(t *testing.T, secret string, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := NewJWTService(config.AuthConfig{
		Enabled:              true,
		JWTSecret:            secret,
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	impl := svc.(*hmacJWTService)
	impl.timeFunc = now
	return impl
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.ErrorIs(t, err, ErrInvalidSecret)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 0})
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, testSecret, func() time.Time { return fixedTime })

	token, err := svc.GenerateToken(context.Background(), "")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, DefaultSubject, claims.Subject)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	_, err = svc.GenerateTokenWithLifetime(context.Background(), "cli", 0)
	assert.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	wrongSecret := "wrong-secret-that-is-long-enough-for-testing"

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) (JWTService, string)
		wantErr   error
	}{
		{
			name: "valid token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestService(t, testSecret, func() time.Time { return fixedTime })
				token, err := svc.GenerateToken(context.Background(), "phone")
				require.NoError(t, err)
				return svc, token
			},
		},
		{
			name: "expired token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				gen := newTestService(t, testSecret, func() time.Time { return fixedTime })
				token, err := gen.GenerateToken(context.Background(), "phone")
				require.NoError(t, err)
				return newTestService(t, testSecret, func() time.Time {
					return fixedTime.Add(2 * time.Hour)
				}), token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "within clock skew",
			setupFunc: func(t *testing.T) (JWTService, string) {
				gen := newTestService(t, testSecret, func() time.Time { return fixedTime })
				token, err := gen.GenerateToken(context.Background(), "phone")
				require.NoError(t, err)
				return newTestService(t, testSecret, func() time.Time {
					return fixedTime.Add(time.Hour + time.Minute)
				}), token
			},
		},
		{
			name: "not yet valid",
			setupFunc: func(t *testing.T) (JWTService, string) {
				gen := newTestService(t, testSecret, func() time.Time { return fixedTime.Add(time.Hour) })
				token, err := gen.GenerateToken(context.Background(), "phone")
				require.NoError(t, err)
				return newTestService(t, testSecret, func() time.Time { return fixedTime }), token
			},
			wantErr: ErrTokenNotYetValid,
		},
		{
			name: "wrong secret",
			setupFunc: func(t *testing.T) (JWTService, string) {
				gen := newTestService(t, wrongSecret, func() time.Time { return fixedTime })
				token, err := gen.GenerateToken(context.Background(), "phone")
				require.NoError(t, err)
				return newTestService(t, testSecret, func() time.Time { return fixedTime }), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestService(t, testSecret, time.Now), "not.a.jwt"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "empty token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestService(t, testSecret, time.Now), " "
			},
			wantErr: ErrMissingToken,
		},
		{
			name: "wrong token type",
			setupFunc: func(t *testing.T) (JWTService, string) {
				claims := jwtCustomClaims{
					TokenType: "refresh",
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    issuer,
						Subject:   "phone",
						IssuedAt:  jwt.NewNumericDate(fixedTime),
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return newTestService(t, testSecret, func() time.Time { return fixedTime }), token
			},
			wantErr: ErrWrongTokenType,
		},
		{
			name: "foreign issuer",
			setupFunc: func(t *testing.T) (JWTService, string) {
				claims := jwtCustomClaims{
					TokenType: tokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    "someone-else",
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return newTestService(t, testSecret, func() time.Time { return fixedTime }), token
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
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
			assert.Equal(t, "phone", claims.Subject)
		})
	}
}
