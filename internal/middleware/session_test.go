package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fieldreg/member-registration/internal/session"
	"github.com/fieldreg/member-registration/internal/utils"
)

const testSecret = "test-secret"

func newGatedEcho(store session.Store) *echo.Echo {
	e := echo.New()
	e.Use(LoadSession(testSecret, store))
	e.GET("/register", func(c echo.Context) error {
		sess, _, _ := CurrentSession(c)
		return c.String(http.StatusOK, sess.RollNumber)
	}, RequireStarted())
	return e
}

func TestRequireStarted_AnonymousRedirects(t *testing.T) {
	t.Parallel()

	e := newGatedEcho(session.NewMemoryStore(time.Minute))
	req := httptest.NewRequest(http.MethodGet, "/register", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("Location=%q, want /", loc)
	}
}

func TestRequireStarted_TamperedCookieRedirects(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(time.Minute)
	e := newGatedEcho(store)
	req := httptest.NewRequest(http.MethodGet, "/register", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestRequireStarted_StartedSessionPasses(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(time.Minute)
	sid, err := utils.NewSessionID()
	if err != nil {
		t.Fatalf("NewSessionID() err=%v", err)
	}
	if err := store.Set(context.Background(), sid, session.Session{Started: true, RollNumber: "20240501AG74321"}); err != nil {
		t.Fatalf("Set() err=%v", err)
	}
	tok, err := utils.SignSessionToken(testSecret, sid, 30)
	if err != nil {
		t.Fatalf("SignSessionToken() err=%v", err)
	}

	e := newGatedEcho(store)
	req := httptest.NewRequest(http.MethodGet, "/register", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tok})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "20240501AG74321" {
		t.Fatalf("body=%q, want roll number", rec.Body.String())
	}
}

func TestRequireStarted_NotStartedSessionRedirects(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(time.Minute)
	sid, _ := utils.NewSessionID()
	if err := store.Set(context.Background(), sid, session.Session{Started: false, RefID: "REF9"}); err != nil {
		t.Fatalf("Set() err=%v", err)
	}
	tok, _ := utils.SignSessionToken(testSecret, sid, 30)

	e := newGatedEcho(store)
	req := httptest.NewRequest(http.MethodGet, "/register", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tok})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want %d", rec.Code, http.StatusSeeOther)
	}
}
