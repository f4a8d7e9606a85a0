package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveTesterJWT(secret, authHeader string) (*httptest.ResponseRecorder, string) {
	var subject string
	h := TesterJWT(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = TesterFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/dev/simulate", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, subject
}

func TestTesterJWTRejects(t *testing.T) {
	good, err := IssueTesterToken("secret", "qa", time.Minute)
	require.NoError(t, err)
	wrong, err := IssueTesterToken("other", "qa", time.Minute)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "qa"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	cases := map[string]struct {
		secret string
		header string
	}{
		"auth disabled":  {secret: "", header: "Bearer " + good},
		"missing header": {secret: "secret"},
		"not bearer":     {secret: "secret", header: "Basic abc"},
		"wrong secret":   {secret: "secret", header: "Bearer " + wrong},
		"no expiry":      {secret: "secret", header: "Bearer " + noExpiry},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec, _ := serveTesterJWT(tc.secret, tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestTesterJWTExpired(t *testing.T) {
	token, err := IssueTesterToken("secret", "qa", -time.Minute)
	require.NoError(t, err)
	rec, _ := serveTesterJWT("secret", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTesterJWTValid(t *testing.T) {
	token, err := IssueTesterToken("secret", "qa-ana", 5*time.Minute)
	require.NoError(t, err)
	rec, subject := serveTesterJWT("secret", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "qa-ana", subject)
}

func TestIssueTesterTokenRequiresSecret(t *testing.T) {
	_, err := IssueTesterToken("", "qa", time.Minute)
	assert.Error(t, err)
}
