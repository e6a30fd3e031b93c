package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testUser() *models.User {
	return &models.User{Base: models.Base{ID: "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"}, Username: "treasurer", IsActive: true}
}

func sessionCookie(t *testing.T, s *Sessions) *http.Cookie {
	t.Helper()
	token, err := s.Issue(testUser())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return &http.Cookie{Name: SessionCookie, Value: token}
}

// stubUsers serves a fixed set of accounts by ID.
type stubUsers map[string]*models.User

func (s stubUsers) GetUserByID(id string) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func setupProtectedRouter(s *Sessions, users stubUsers) *gin.Engine {
	r := gin.New()
	r.GET("/transactions", s.RequireLogin(users), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c)+"|"+Username(c))
	})
	return r
}

func TestSessions_RoundTrip(t *testing.T) {
	s := NewSessions("test-secret", time.Hour, false)

	token, err := s.Issue(testUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := s.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != testUser().ID || claims.Username != "treasurer" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestSessions_Rejects(t *testing.T) {
	t.Run("expired", func(t *testing.T) {
		s := NewSessions("test-secret", time.Hour, false)
		issued := time.Now()
		s.now = func() time.Time { return issued }
		token, _ := s.Issue(testUser())

		s.now = func() time.Time { return issued.Add(2 * time.Hour) }
		if _, err := s.Parse(token); err == nil {
			t.Error("expected expired session to be rejected")
		}
	})

	t.Run("other_secret", func(t *testing.T) {
		token, _ := NewSessions("one", time.Hour, false).Issue(testUser())
		if _, err := NewSessions("two", time.Hour, false).Parse(token); err == nil {
			t.Error("expected foreign signature to be rejected")
		}
	})

	t.Run("wrong_token_type", func(t *testing.T) {
		claims := jwt.MapClaims{
			"type": "password_reset",
			"sub":  testUser().ID,
			"exp":  time.Now().Add(time.Hour).Unix(),
		}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		if _, err := NewSessions("test-secret", time.Hour, false).Parse(token); err == nil {
			t.Error("expected non-session token to be rejected")
		}
	})
}

func TestRequireLogin(t *testing.T) {
	s := NewSessions("test-secret", time.Hour, false)
	r := setupProtectedRouter(s, stubUsers{testUser().ID: testUser()})

	t.Run("redirects_anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transactions?page=2", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login?next=%2Ftransactions%3Fpage%3D2" {
			t.Errorf("unexpected redirect %q", loc)
		}
	})

	t.Run("redirects_garbage_cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
	})

	t.Run("redirects_inactive_user", func(t *testing.T) {
		inactive := testUser()
		inactive.IsActive = false
		r := setupProtectedRouter(s, stubUsers{inactive.ID: inactive})

		req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
		req.AddCookie(sessionCookie(t, s))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
		if !strings.Contains(rec.Header().Get("Set-Cookie"), SessionCookie+"=;") {
			t.Error("expected the stale session cookie to be cleared")
		}
	})

	t.Run("passes_valid_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
		req.AddCookie(sessionCookie(t, s))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body := rec.Body.String(); body != testUser().ID+"|treasurer" {
			t.Errorf("unexpected context values %q", body)
		}
	})
}

func TestLoginLogoutCookies(t *testing.T) {
	s := NewSessions("test-secret", time.Hour, true)
	r := gin.New()
	r.POST("/login", func(c *gin.Context) {
		if err := s.Login(c, testUser()); err != nil {
			t.Fatalf("login: %v", err)
		}
		c.Status(http.StatusNoContent)
	})
	r.POST("/logout", func(c *gin.Context) {
		s.Logout(c)
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	set := rec.Header().Get("Set-Cookie")
	for _, want := range []string{SessionCookie + "=", "HttpOnly", "Secure", "SameSite=Lax"} {
		if !strings.Contains(set, want) {
			t.Errorf("login cookie %q missing %q", set, want)
		}
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	if set := rec.Header().Get("Set-Cookie"); !strings.Contains(set, "Max-Age=0") {
		t.Errorf("logout should expire the cookie, got %q", set)
	}
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"/transactions?page=2": "/transactions?page=2",
		"":                     "/",
		"https://evil.test/":   "/",
		"//evil.test":          "/",
		`/\evil.test`:          "/",
	}
	for in, want := range tests {
		if got := SafeNext(in); got != want {
			t.Errorf("SafeNext(%q) = %q, want %q", in, got, want)
		}
	}
}
