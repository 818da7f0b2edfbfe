package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return token
}

func freshClaims(goSipID string) *Claims {
	return &Claims{
		GoSipID: goSipID,
		Email:   "ari@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, testSecret)
	r := gin.New()
	r.GET("/protected", h.VerifyAuth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"GoSipID": mustClaims(c).GoSipID})
	})
	return r
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func refusalReason(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestVerifyAuth_ValidToken(t *testing.T) {
	r := authTestRouter()
	token := signToken(t, testSecret, freshClaims("GS-0A0A0A-0A0A0A"))

	w := doRequest(r, token)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "GS-0A0A0A-0A0A0A", body["GoSipID"], "handlers see the verified identity")
}

func TestVerifyAuth_MissingCookie(t *testing.T) {
	r := authTestRouter()

	w := doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, ReasonNoCredentials, refusalReason(t, w))
}

func TestVerifyAuth_ExpiredToken(t *testing.T) {
	r := authTestRouter()
	claims := freshClaims("GS-0A0A0A-0A0A0A")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	token := signToken(t, testSecret, claims)

	w := doRequest(r, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, ReasonInvalidOrExpired, refusalReason(t, w))
}

func TestVerifyAuth_GarbageToken(t *testing.T) {
	r := authTestRouter()

	w := doRequest(r, "not-a-jwt")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, ReasonInvalidOrExpired, refusalReason(t, w))
}

func TestVerifyAuth_WrongSecret(t *testing.T) {
	r := authTestRouter()
	token := signToken(t, "some-other-secret", freshClaims("GS-0A0A0A-0A0A0A"))

	w := doRequest(r, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, ReasonInvalidOrExpired, refusalReason(t, w))
}

func TestVerifyAuth_TokenWithoutIdentity(t *testing.T) {
	r := authTestRouter()
	token := signToken(t, testSecret, freshClaims(""))

	w := doRequest(r, token)
	assert.Equal(t, http.StatusForbidden, w.Code, "a token with no GoSipID is useless to the gateway")
	assert.Equal(t, ReasonInvalidOrExpired, refusalReason(t, w))
}
