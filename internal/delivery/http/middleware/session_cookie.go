package middleware

import (
	"errors"
	"net/http"
	"time"

	"job-tracker-backend/config"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the signed session id.
const SessionCookieName = "sid"

var ErrNoCookie = errors.New("no session cookie")

// CookieSigner is satisfied by *session.Signer.
type CookieSigner interface {
	Sign(sessionID string) (string, error)
	Verify(value string) (string, error)
}

// SessionCookie writes and reads the session cookie according to the
// active environment profile. No route sets cookie options of its own.
type SessionCookie struct {
	Profile config.Profile
	TTL     time.Duration
	Signer  CookieSigner
}

func (sc SessionCookie) Set(c *gin.Context, sessionID string) error {
	value, err := sc.Signer.Sign(sessionID)
	if err != nil {
		return err
	}
	http.SetCookie(c.Writer, sc.cookie(value, int(sc.TTL.Seconds())))
	return nil
}

// Clear expires the cookie on the client.
func (sc SessionCookie) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, sc.cookie("", -1))
}

// Read returns the session id carried by the request cookie.
func (sc SessionCookie) Read(c *gin.Context) (string, error) {
	value, err := c.Cookie(SessionCookieName)
	if err != nil || value == "" {
		return "", ErrNoCookie
	}
	return sc.Signer.Verify(value)
}

func (sc SessionCookie) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   sc.Profile.CookieDomain,
		MaxAge:   maxAge,
		Secure:   sc.Profile.CookieSecure,
		HttpOnly: true,
		SameSite: sc.Profile.CookieSameSite,
	}
}
