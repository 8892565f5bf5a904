package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"job-tracker-backend/config"
	"job-tracker-backend/internal/delivery/http/response"

	"github.com/gin-gonic/gin"
)

// OriginGuard rejects state-changing requests whose Origin (or Referer,
// when Origin is absent) names a site outside the profile allowlist.
// Requests with neither header come from non-browser clients and pass.
func OriginGuard(profile config.Profile) gin.HandlerFunc {
	allowed := make(map[string]bool, len(profile.AllowedOrigins))
	for _, o := range profile.AllowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			if ref, err := url.Parse(c.GetHeader("Referer")); err == nil && ref.Host != "" {
				origin = ref.Scheme + "://" + ref.Host
			}
		}
		if origin != "" && !allowed[origin] && !sameHost(origin, c.Request.Host) {
			response.Error(c, http.StatusForbidden, "Origin not allowed", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	return err == nil && u.Host == host
}
