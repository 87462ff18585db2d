package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadchat/internal/pkg/jwtutil"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func identityEcho(c *gin.Context) {
	if userID, ok := UserIDFromContext(c); ok {
		c.JSON(http.StatusOK, gin.H{"userId": userID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": nil})
}

func newAuthRouter(required bool) *gin.Engine {
	r := gin.New()
	if required {
		r.GET("/me", AuthJWT(testSecret), identityEcho)
	} else {
		r.GET("/me", OptionalAuthJWT(testSecret), identityEcho)
	}
	return r
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func signedToken(t *testing.T, secret string) string {
	t.Helper()
	token, err := jwtutil.GenerateToken(secret, time.Hour, 7, "agent1")
	require.NoError(t, err)
	return token
}

func TestAuthJWTAcceptsValidToken(t *testing.T) {
	r := newAuthRouter(true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, bearerRequest(signedToken(t, testSecret)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":7}`, w.Body.String())
}

func TestAuthJWTRejectsMissingOrInvalidToken(t *testing.T) {
	r := newAuthRouter(true)

	cases := []string{
		"",
		"garbage",
		signedToken(t, "other-secret"),
	}
	for _, token := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, bearerRequest(token))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestOptionalAuthJWTPassesAnonymousThrough(t *testing.T) {
	r := newAuthRouter(false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, bearerRequest(""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":null}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, bearerRequest("not-a-token"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":null}`, w.Body.String())
}

func TestOptionalAuthJWTAttachesIdentity(t *testing.T) {
	r := newAuthRouter(false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, bearerRequest(signedToken(t, testSecret)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":7}`, w.Body.String())
}
