package middleware

import (
	"errors"
	"net/http"

	"job-tracker-backend/internal/delivery/http/response"
	"job-tracker-backend/internal/domain"
	"job-tracker-backend/internal/session"
	"job-tracker-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// Reasons a request is rejected. Logged only; the client never sees them.
const (
	ReasonNoCookie         = "no_cookie"
	ReasonBadSignature     = "bad_signature"
	ReasonNoSession        = "no_session"
	ReasonExpired          = "expired"
	ReasonNoUserInSession  = "no_user_in_session"
	ReasonStoreUnavailable = "store_unavailable"
)

// SessionAuth resolves the session cookie into a domain.Identity. Every
// failure, store outages included, ends in the same 401.
func SessionAuth(cookie SessionCookie, sessions domain.SessionStore, audit *security.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, reason := resolve(c, cookie, sessions)
		if reason != "" {
			audit.Log(c.Request.Context(), security.AuditEvent{
				Event:     security.EventUnauthorizedAccess,
				IP:        c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
				RequestID: response.RequestID(c),
				Path:      c.Request.URL.Path,
				Reason:    reason,
			})
			response.Error(c, http.StatusUnauthorized, "Unauthorized", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyIdentity), identity)
		c.Next()
	}
}

func resolve(c *gin.Context, cookie SessionCookie, sessions domain.SessionStore) (domain.Identity, string) {
	id, err := cookie.Read(c)
	switch {
	case errors.Is(err, ErrNoCookie):
		return domain.Identity{}, ReasonNoCookie
	case errors.Is(err, session.ErrBadSignature), err != nil:
		return domain.Identity{}, ReasonBadSignature
	}

	sess, err := sessions.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return domain.Identity{}, ReasonNoSession
	case errors.Is(err, domain.ErrSessionExpired):
		return domain.Identity{}, ReasonExpired
	case err != nil:
		return domain.Identity{}, ReasonStoreUnavailable
	}

	identity := domain.IdentityFromSession(sess)
	if !identity.Authenticated() {
		return domain.Identity{}, ReasonNoUserInSession
	}
	return identity, ""
}

// GetIdentity returns the identity set by SessionAuth, or the zero value.
func GetIdentity(c *gin.Context) domain.Identity {
	v, ok := c.Get(string(domain.KeyIdentity))
	if !ok {
		return domain.Identity{}
	}
	identity, _ := v.(domain.Identity)
	return identity
}

// OptionalSessionID returns the verified session id without requiring one.
// Used by logout, which must succeed with or without a live session.
func OptionalSessionID(c *gin.Context, cookie SessionCookie) string {
	id, err := cookie.Read(c)
	if err != nil {
		return ""
	}
	return id
}
