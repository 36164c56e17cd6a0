package storefront

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"foodiedelight/internal/logger"
	"foodiedelight/internal/services/session"
)

const (
	SessionCookie = "foodie_session"

	sessionKey = "session"
)

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// withLogging writes one entry per request after the handler has run
func withLogging(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := map[string]interface{}{
				"method":      req.Method,
				"path":        c.Path(),
				"status":      c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if c.Response().Status >= http.StatusInternalServerError {
				log.Error("request_failed", "Request failed", requestID(c), err, fields)
			} else {
				log.Debug("request_completed", "Request completed", requestID(c), fields)
			}
			return nil
		}
	}
}

// withSession attaches the caller's existing session, if any
func withSession(sessions Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				if s, ok := sessions.Get(cookie.Value); ok {
					c.Set(sessionKey, s)
				}
			}
			return next(c)
		}
	}
}

// withNewSession attaches the caller's session, creating one and issuing a
// cookie when there is none. Only routes that put items in a cart use it.
func withNewSession(sessions Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				id = cookie.Value
			}

			s, created := sessions.GetOrCreate(id)
			if created {
				c.SetCookie(&http.Cookie{
					Name:     SessionCookie,
					Value:    s.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(sessionKey, s)
			return next(c)
		}
	}
}

// sessionFrom returns the request's session, or nil when the caller has none
func sessionFrom(c echo.Context) *session.Session {
	s, _ := c.Get(sessionKey).(*session.Session)
	return s
}
