package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldreg/member-registration/internal/session"
	"github.com/fieldreg/member-registration/internal/utils"
)

// CookieName is the browser cookie carrying the signed session token.
const CookieName = "reg_session"

// Context keys under which the loaded session is stashed for handlers.
const (
	ctxSessionID = "session_id"
	ctxSession   = "session"
)

// LoadSession returns an Echo middleware that resolves the session cookie
// into server-side session state.  The cookie value is a signed JWT whose
// sid claim keys the session store; a missing, tampered or expired cookie
// simply leaves the request anonymous — the step gates downstream decide
// what anonymous visitors may reach.
func LoadSession(secret string, store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}
			sid, err := utils.ParseSessionToken(secret, cookie.Value)
			if err != nil {
				return next(c)
			}
			sess, ok, err := store.Get(c.Request().Context(), sid)
			if err != nil {
				// A broken session backend must not 500 the whole flow; the
				// visitor is treated as anonymous and sent back to the start.
				c.Logger().Errorf("session load failed: %v", err)
				return next(c)
			}
			if !ok {
				return next(c)
			}
			c.Set(ctxSessionID, sid)
			c.Set(ctxSession, sess)
			return next(c)
		}
	}
}

// RequireStarted gates the steps after /start.  Visitors without a
// started session are redirected to the entry page rather than shown an
// error, matching the recover-by-going-back error model.
func RequireStarted() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, _, ok := CurrentSession(c)
			if !ok || !sess.Started {
				return c.Redirect(http.StatusSeeOther, "/")
			}
			return next(c)
		}
	}
}

// CurrentSession returns the session loaded by LoadSession along with its
// store id.  ok is false for anonymous requests.
func CurrentSession(c echo.Context) (session.Session, string, bool) {
	v := c.Get(ctxSession)
	if v == nil {
		return session.Session{}, "", false
	}
	sess, ok := v.(session.Session)
	if !ok {
		return session.Session{}, "", false
	}
	sid, _ := c.Get(ctxSessionID).(string)
	return sess, sid, true
}

// SetCurrentSession refreshes the context copy after a handler mutates
// and re-saves the session mid-request.
func SetCurrentSession(c echo.Context, sid string, sess session.Session) {
	c.Set(ctxSessionID, sid)
	c.Set(ctxSession, sess)
}
