package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType names an auditable auth event.
type EventType string

const (
	EventRegister           EventType = "register"
	EventLoginSuccess       EventType = "login_success"
	EventLoginFailed        EventType = "login_failed"
	EventLogout             EventType = "logout"
	EventPasswordChanged    EventType = "password_changed"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
)

// AuditEvent is one security-relevant occurrence. Email is hashed before
// it is written; passwords must never be put in Details.
type AuditEvent struct {
	Timestamp time.Time
	Event     EventType
	UserID    string
	Email     string
	IP        string
	UserAgent string
	RequestID string
	Path      string
	Reason    string
	Details   map[string]interface{}
}

// AuditLogger writes auth events as structured zap entries.
type AuditLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// NewAuditLogger builds a production zap logger writing JSON to stdout.
func NewAuditLogger(serviceName, environment string) *AuditLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return NewAuditLoggerWith(logger, serviceName, environment)
}

// NewAuditLoggerWith wraps an existing zap logger.
func NewAuditLoggerWith(logger *zap.Logger, serviceName, environment string) *AuditLogger {
	return &AuditLogger{zapLogger: logger, serviceName: serviceName, environment: environment}
}

// NopAuditLogger discards everything.
func NopAuditLogger() *AuditLogger {
	return NewAuditLoggerWith(zap.NewNop(), "", "")
}

func (a *AuditLogger) Log(_ context.Context, ev AuditEvent) {
	if a == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	fields := []zap.Field{
		zap.String("service", a.serviceName),
		zap.String("env", a.environment),
		zap.String("event", string(ev.Event)),
		zap.Time("occurred_at", ev.Timestamp),
	}
	if ev.UserID != "" {
		fields = append(fields, zap.String("user_id", ev.UserID))
	}
	if ev.Email != "" {
		fields = append(fields, zap.String("email_hash", HashValue(strings.ToLower(ev.Email))))
	}
	if ev.IP != "" {
		fields = append(fields, zap.String("ip", ev.IP))
	}
	if ev.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", ev.UserAgent))
	}
	if ev.RequestID != "" {
		fields = append(fields, zap.String("request_id", ev.RequestID))
	}
	if ev.Path != "" {
		fields = append(fields, zap.String("path", ev.Path))
	}
	if ev.Reason != "" {
		fields = append(fields, zap.String("reason", ev.Reason))
	}
	if len(ev.Details) > 0 {
		fields = append(fields, zap.Any("details", ev.Details))
	}

	a.zapLogger.Log(levelFor(ev.Event), string(ev.Event), fields...)
}

func (a *AuditLogger) Sync() error {
	if a == nil {
		return nil
	}
	return a.zapLogger.Sync()
}

func levelFor(ev EventType) zapcore.Level {
	switch ev {
	case EventLoginFailed, EventUnauthorizedAccess, EventRateLimitTriggered:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// HashValue is a short SHA-256 fingerprint for logging values without PII.
func HashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:8])
}
