package security

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// UploadKind selects the whitelist an upload is checked against.
type UploadKind string

const (
	UploadImage  UploadKind = "image"
	UploadResume UploadKind = "resume"
)

var (
	ErrEmptyUpload     = errors.New("no file uploaded")
	ErrUploadTooLarge  = errors.New("file too large")
	ErrTypeNotAllowed  = errors.New("file type not allowed")
	ErrContentMismatch = errors.New("file content does not match its type")
)

// UploadInfo is what validation learned about an accepted file.
type UploadInfo struct {
	MIME      string
	Extension string
}

type uploadRule struct {
	mimes      map[string]bool
	extensions map[string]bool
}

var uploadRules = map[UploadKind]uploadRule{
	UploadImage: {
		mimes:      map[string]bool{"image/jpeg": true, "image/png": true, "image/webp": true},
		extensions: map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true},
	},
	UploadResume: {
		mimes:      map[string]bool{"application/pdf": true},
		extensions: map[string]bool{".pdf": true},
	},
}

// Magic byte prefixes per detected MIME type.
var magicBytes = map[string][][]byte{
	"image/jpeg":      {{0xFF, 0xD8, 0xFF}},
	"image/png":       {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	"image/webp":      {{0x52, 0x49, 0x46, 0x46}}, // RIFF
	"application/pdf": {{0x25, 0x50, 0x44, 0x46}}, // %PDF
}

// ValidateUpload checks an upload in layers: size, sniffed MIME whitelist,
// magic bytes, then the client filename extension when one is given.
// The client-declared content type is never trusted.
func ValidateUpload(kind UploadKind, filename string, data []byte, maxBytes int64) (UploadInfo, error) {
	rule, ok := uploadRules[kind]
	if !ok {
		return UploadInfo{}, fmt.Errorf("unknown upload kind %q", kind)
	}
	if len(data) == 0 {
		return UploadInfo{}, ErrEmptyUpload
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return UploadInfo{}, fmt.Errorf("%w: limit is %d MB", ErrUploadTooLarge, maxBytes>>20)
	}

	detected := mimetype.Detect(data)
	mime := strings.ToLower(strings.TrimSpace(strings.SplitN(detected.String(), ";", 2)[0]))
	if !rule.mimes[mime] {
		return UploadInfo{}, fmt.Errorf("%w: %s", ErrTypeNotAllowed, mime)
	}
	if !hasMagicPrefix(mime, data) {
		return UploadInfo{}, ErrContentMismatch
	}

	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && !rule.extensions[ext] {
		return UploadInfo{}, fmt.Errorf("%w: extension %s", ErrTypeNotAllowed, ext)
	}

	return UploadInfo{MIME: mime, Extension: detected.Extension()}, nil
}

func hasMagicPrefix(mime string, data []byte) bool {
	for _, sig := range magicBytes[mime] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}
