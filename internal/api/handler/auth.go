package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

// Auth-refusal reasons. Distinguishable so a client can tell "log in first"
// from "token went bad".
const (
	ReasonNoCredentials    = "no-credentials"
	ReasonInvalidOrExpired = "invalid-or-expired"
)

// accessTokenCookie is the cookie the account service sets at login. The
// gateway only ever reads it.
const accessTokenCookie = "accessToken"

var (
	errNoCredentials    = errors.New(ReasonNoCredentials)
	errInvalidOrExpired = errors.New(ReasonInvalidOrExpired)
)

// Claims are the identity claims the account service signs into the access
// token. GoSipID is the only field the gateway trusts handlers with.
type Claims struct {
	GoSipID string `json:"GoSipID"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// claimsFromRequest extracts and verifies the access token from the cookie
// header. This is the sole point where identity is established; everything
// downstream trusts the returned claims without re-verification.
func (h *Handler) claimsFromRequest(c *gin.Context) (*Claims, error) {
	tokenString, err := c.Cookie(accessTokenCookie)
	if err != nil || tokenString == "" {
		return nil, errNoCredentials
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return h.JWTSecret, nil
	})
	if err != nil || !token.Valid || claims.GoSipID == "" {
		return nil, errInvalidOrExpired
	}
	return claims, nil
}

// VerifyAuth is the gin middleware guarding the CRUD surface. It refuses the
// request before any handler runs, mirroring the gate on the websocket path.
func (h *Handler) VerifyAuth(c *gin.Context) {
	claims, err := h.claimsFromRequest(c)
	if err != nil {
		status := http.StatusForbidden
		if errors.Is(err, errNoCredentials) {
			status = http.StatusUnauthorized
		}
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Set("claims", claims)
	c.Next()
}

// mustClaims returns the claims VerifyAuth attached earlier.
func mustClaims(c *gin.Context) *Claims {
	return c.MustGet("claims").(*Claims)
}
