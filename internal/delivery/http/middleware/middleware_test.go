package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"job-tracker-backend/config"
	"job-tracker-backend/internal/delivery/http/response"
	"job-tracker-backend/internal/domain"
	"job-tracker-backend/internal/session"
	"job-tracker-backend/pkg/apperror"
	"job-tracker-backend/pkg/security"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubStore struct {
	sess *domain.Session
	err  error
}

func (s stubStore) Create(context.Context, domain.SessionPayload) (*domain.Session, error) {
	return s.sess, s.err
}
func (s stubStore) Get(context.Context, string) (*domain.Session, error) { return s.sess, s.err }
func (s stubStore) Replace(context.Context, string, domain.SessionPayload) (*domain.Session, error) {
	return s.sess, s.err
}
func (s stubStore) Destroy(context.Context, string) error { return s.err }

func testCookie() SessionCookie {
	profile, _ := config.ProfileFor(config.EnvDevelopment)
	return SessionCookie{Profile: profile, TTL: time.Hour, Signer: session.NewSigner("secret")}
}

func observedAudit() (*security.AuditLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return security.NewAuditLoggerWith(zap.New(core), "test", "test"), logs
}

func signed(t *testing.T, sc SessionCookie, id string) *http.Cookie {
	t.Helper()
	v, err := sc.Signer.Sign(id)
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookieName, Value: v}
}

func TestSessionAuth_RejectionsAreUniform(t *testing.T) {
	sc := testCookie()
	live := &domain.Session{ID: "s1", Payload: domain.SessionPayload{UserID: "u1", Name: "A", Email: "a@x.com"}}

	tests := []struct {
		name   string
		cookie *http.Cookie
		store  stubStore
		reason string
	}{
		{"no cookie", nil, stubStore{sess: live}, ReasonNoCookie},
		{"bad signature", &http.Cookie{Name: SessionCookieName, Value: "forged"}, stubStore{sess: live}, ReasonBadSignature},
		{"unknown session", signed(t, sc, "s1"), stubStore{err: domain.ErrSessionNotFound}, ReasonNoSession},
		{"expired session", signed(t, sc, "s1"), stubStore{err: domain.ErrSessionExpired}, ReasonExpired},
		{"payload without user", signed(t, sc, "s1"), stubStore{sess: &domain.Session{ID: "s1"}}, ReasonNoUserInSession},
		{"store down", signed(t, sc, "s1"), stubStore{err: errors.New("dial tcp: refused")}, ReasonStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audit, logs := observedAudit()
			r := gin.New()
			r.Use(RequestID())
			r.GET("/p", SessionAuth(sc, tt.store, audit), func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var body response.ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Unauthorized", body.Message)
			assert.NotEmpty(t, body.RequestID)

			entries := logs.FilterMessage(string(security.EventUnauthorizedAccess)).All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.reason, entries[0].ContextMap()["reason"])
		})
	}
}

func TestSessionAuth_SetsIdentity(t *testing.T) {
	sc := testCookie()
	live := &domain.Session{ID: "s1", Payload: domain.SessionPayload{UserID: "u1", Name: "A", Email: "a@x.com"}}

	var got domain.Identity
	r := gin.New()
	r.GET("/p", SessionAuth(sc, stubStore{sess: live}, security.NopAuditLogger()), func(c *gin.Context) {
		got = GetIdentity(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.AddCookie(signed(t, sc, "s1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.Identity{UserID: "u1", Name: "A", Email: "a@x.com", SessionID: "s1"}, got)
}

func TestSessionCookie_Attributes(t *testing.T) {
	prod, _ := config.ProfileFor(config.EnvProduction)
	prod.CookieDomain = "example.com"
	sc := SessionCookie{Profile: prod, TTL: 7 * 24 * time.Hour, Signer: session.NewSigner("secret")}

	r := gin.New()
	r.GET("/set", func(c *gin.Context) { _ = sc.Set(c, "abc") })
	r.GET("/clear", func(c *gin.Context) { sc.Clear(c) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set", nil))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	assert.Equal(t, SessionCookieName, ck.Name)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteNoneMode, ck.SameSite)
	assert.Equal(t, "example.com", ck.Domain)
	assert.Equal(t, 7*24*60*60, ck.MaxAge)
	assert.NotEqual(t, "abc", ck.Value, "the raw session id is never the cookie value")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clear", nil))
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
	assert.Empty(t, cookies[0].Value)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/app", func(c *gin.Context) { c.Error(apperror.NotFound("Application not found")) })
	r.GET("/internal", func(c *gin.Context) { c.Error(apperror.Internal(errors.New("pq: secret detail"))) })
	r.GET("/plain", func(c *gin.Context) { c.Error(errors.New("boom")) })
	r.POST("/bind", func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(&BindError{Err: err})
		}
	})

	tests := []struct {
		method, path string
		code         int
		message      string
	}{
		{http.MethodGet, "/app", http.StatusNotFound, "Application not found"},
		{http.MethodGet, "/internal", http.StatusInternalServerError, "An unexpected error occurred. Please try again later."},
		{http.MethodGet, "/plain", http.StatusInternalServerError, "An unexpected error occurred. Please try again later."},
		{http.MethodPost, "/bind", http.StatusBadRequest, "Email is required"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.method == http.MethodPost {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			var body response.ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Message)
			assert.NotContains(t, w.Body.String(), "secret detail")
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, response.RequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "client-supplied-123", w.Body.String())
	assert.Equal(t, "client-supplied-123", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id\nwith newline")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Body.String(), 36, "malformed ids are replaced with a uuid")
}

func TestCORSMiddleware(t *testing.T) {
	profile, _ := config.ProfileFor(config.EnvDevelopment)
	r := gin.New()
	r.Use(CORSMiddleware(profile))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("http://localhost:5173")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = preflight("https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOriginGuard(t *testing.T) {
	profile, _ := config.ProfileFor(config.EnvDevelopment)
	r := gin.New()
	r.Use(OriginGuard(profile))
	r.Any("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name    string
		method  string
		headers map[string]string
		code    int
	}{
		{"safe method from anywhere", http.MethodGet, map[string]string{"Origin": "https://evil.example"}, http.StatusOK},
		{"allowed origin", http.MethodPost, map[string]string{"Origin": "http://localhost:5173"}, http.StatusOK},
		{"foreign origin", http.MethodPost, map[string]string{"Origin": "https://evil.example"}, http.StatusForbidden},
		{"foreign referer", http.MethodDelete, map[string]string{"Referer": "https://evil.example/page"}, http.StatusForbidden},
		{"same host", http.MethodPut, map[string]string{"Origin": "http://example.com"}, http.StatusOK},
		{"no browser headers", http.MethodPost, nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func limitedRouter(rl *RateLimiter, limit int) *gin.Engine {
	r := gin.New()
	r.POST("/login", rl.Middleware(AuthRateLimitConfig(limit, time.Minute)), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hitN(r *gin.Engine, n int) []int {
	codes := make([]int, 0, n)
	for i := 0; i < n; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	return codes
}

func TestRateLimiter_Memory(t *testing.T) {
	audit, logs := observedAudit()
	rl := NewRateLimiter(nil, audit)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	r := limitedRouter(rl, 3)
	assert.Equal(t, []int{200, 200, 200, 429}, hitN(r, 4))
	assert.Equal(t, 1, logs.FilterMessage(string(security.EventRateLimitTriggered)).Len())

	clock = clock.Add(time.Minute)
	assert.Equal(t, []int{200}, hitN(r, 1), "a new window starts after the old one ends")

	clock = clock.Add(2 * time.Minute)
	rl.Sweep()
	rl.mu.Lock()
	assert.Empty(t, rl.entries)
	rl.mu.Unlock()
}

func TestRateLimiter_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRateLimiter(client, security.NopAuditLogger())
	r := limitedRouter(rl, 2)

	assert.Equal(t, []int{200, 200, 429}, hitN(r, 3))
	assert.Equal(t, "3", mustGet(t, mr, "rl:auth:192.0.2.1"))
	assert.Equal(t, time.Minute, mr.TTL("rl:auth:192.0.2.1"))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, []int{200}, hitN(r, 1))
}

func TestRateLimiter_RedisDownFallsBackToMemory(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	rl := NewRateLimiter(client, security.NopAuditLogger())
	assert.Equal(t, []int{200, 200, 429}, hitN(limitedRouter(rl, 2), 3))

	closed := NewRateLimiter(client, security.NopAuditLogger())
	r := gin.New()
	cfg := AuthRateLimitConfig(2, time.Minute)
	cfg.FailClosed = true
	r.POST("/login", closed.Middleware(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, []int{503}, hitN(r, 1))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics("test")
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/things/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	r.GET("/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/42", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_http_requests_total{method="GET",route="/things/:id",status="418"} 1`)
	assert.Contains(t, w.Body.String(), "test_http_request_duration_seconds")
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}

