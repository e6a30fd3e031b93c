package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"faithledger/internal/models"
)

// SessionCookie holds the signed session token.
const SessionCookie = "faithledger_session"

// Context keys set by RequireLogin.
const (
	userIDKey   = "userID"
	usernameKey = "username"
	userKey     = "user"
)

const sessionTokenType = "session"

// SessionClaims represents the claims in the session JWT
type SessionClaims struct {
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies the signed session cookie.
type Sessions struct {
	key    []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewSessions creates a session manager signing with secret. Cookies are
// marked Secure when secure is set.
func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{key: []byte(secret), ttl: ttl, secure: secure, now: time.Now}
}

// Issue generates a session token for user.
func (s *Sessions) Issue(user *models.User) (string, error) {
	now := s.now()
	claims := &SessionClaims{
		Username:  user.Username,
		TokenType: sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "faithledger",
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Parse validates a session token and returns its claims.
func (s *Sessions) Parse(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	if claims.TokenType != sessionTokenType || claims.Subject == "" {
		return nil, fmt.Errorf("token is not a session token")
	}
	return claims, nil
}

// Login sets the session cookie for user.
func (s *Sessions) Login(c *gin.Context, user *models.User) error {
	token, err := s.Issue(user)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(s.ttl.Seconds()), "/", "", s.secure, true)
	return nil
}

// Logout clears the session cookie.
func (s *Sessions) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", s.secure, true)
}

// Current returns the claims of the request's session, if any.
func (s *Sessions) Current(c *gin.Context) (*SessionClaims, bool) {
	raw, err := c.Cookie(SessionCookie)
	if err != nil || raw == "" {
		return nil, false
	}
	claims, err := s.Parse(raw)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// UserLookup loads the account behind a session.
type UserLookup interface {
	GetUserByID(id string) (*models.User, error)
}

// RequireLogin verifies the session cookie, loads the active user and sets
// it in the context. Anonymous requests, and sessions of removed or
// deactivated users, are redirected to the login page with the original
// path in ?next=.
func (s *Sessions) RequireLogin(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := s.Current(c)
		if !ok {
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}

		user, err := users.GetUserByID(claims.Subject)
		if err != nil || !user.IsActive {
			s.Logout(c)
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}

		SetCurrentUser(c, user)
		c.Next()
	}
}

// SetCurrentUser stores user as the authenticated user of the request.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(userIDKey, user.ID)
	c.Set(usernameKey, user.Username)
	c.Set(userKey, user)
}

// LoginURL builds the login redirect for next.
func LoginURL(next string) string {
	if next == "" || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// SafeNext returns next when it is a local path, otherwise "/".
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// UserID returns the authenticated user ID set by RequireLogin.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// CurrentUser returns the user loaded by RequireLogin, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// Username returns the authenticated username set by RequireLogin.
func Username(c *gin.Context) string {
	return c.GetString(usernameKey)
}
