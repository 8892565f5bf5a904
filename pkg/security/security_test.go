package security

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	again, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salt differs per call")

	assert.True(t, ComparePassword(hash, "secret1"))
	assert.False(t, ComparePassword(hash, "secret2"))
	assert.False(t, ComparePassword("not-a-hash", "secret1"))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4)), nil))
	return buf.Bytes()
}

var (
	webpHeader = []byte("RIFF\x1a\x00\x00\x00WEBPVP8 \x0e\x00\x00\x00")
	pdfBytes   = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
)

func TestValidateUpload_AcceptsWhitelistedImages(t *testing.T) {
	cases := map[string][]byte{
		"avatar.png":  pngBytes(t),
		"avatar.jpg":  jpegBytes(t),
		"avatar.webp": webpHeader,
		"blob":        pngBytes(t),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			info, err := ValidateUpload(UploadImage, name, data, 5<<20)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(info.MIME, "image/"))
		})
	}
}

func TestValidateUpload_Resume(t *testing.T) {
	info, err := ValidateUpload(UploadResume, "cv.pdf", pdfBytes, 5<<20)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", info.MIME)
	assert.Equal(t, ".pdf", info.Extension)

	_, err = ValidateUpload(UploadResume, "cv.png", pngBytes(t), 5<<20)
	assert.ErrorIs(t, err, ErrTypeNotAllowed)
}

func TestValidateUpload_Rejections(t *testing.T) {
	_, err := ValidateUpload(UploadImage, "a.png", nil, 5<<20)
	assert.ErrorIs(t, err, ErrEmptyUpload)

	_, err = ValidateUpload(UploadImage, "a.png", pngBytes(t), 16)
	assert.ErrorIs(t, err, ErrUploadTooLarge)

	_, err = ValidateUpload(UploadImage, "a.png", pdfBytes, 5<<20)
	assert.ErrorIs(t, err, ErrTypeNotAllowed, "sniffed type wins over the filename")

	_, err = ValidateUpload(UploadImage, "a.exe", pngBytes(t), 5<<20)
	assert.ErrorIs(t, err, ErrTypeNotAllowed)

	_, err = ValidateUpload(UploadImage, "a.gif", []byte("GIF89a\x01\x00\x01\x00"), 5<<20)
	assert.ErrorIs(t, err, ErrTypeNotAllowed)

	_, err = ValidateUpload(UploadKind("video"), "a.mp4", pngBytes(t), 5<<20)
	assert.Error(t, err)
}

func TestAuditLogger_HashesEmail(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	audit := NewAuditLoggerWith(zap.New(core), "job-tracker", "test")

	audit.Log(context.Background(), AuditEvent{
		Event:     EventLoginFailed,
		Email:     "Alice@Example.com",
		IP:        "10.0.0.1",
		RequestID: "req-1",
		Reason:    "bad_password",
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "login_failed", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, HashValue("alice@example.com"), fields["email_hash"])
	assert.Equal(t, "bad_password", fields["reason"])
	for _, v := range fields {
		if s, ok := v.(string); ok {
			assert.NotContains(t, strings.ToLower(s), "alice@example.com")
		}
	}
}

func TestAuditLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	audit := NewAuditLoggerWith(zap.New(core), "job-tracker", "test")

	audit.Log(context.Background(), AuditEvent{Event: EventLoginSuccess, UserID: "u1"})
	audit.Log(context.Background(), AuditEvent{Event: EventUnauthorizedAccess, Reason: "no_cookie"})

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.InfoLevel, logs.All()[0].Level)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)

	var nilLogger *AuditLogger
	assert.NotPanics(t, func() { nilLogger.Log(context.Background(), AuditEvent{Event: EventLogout}) })
}
