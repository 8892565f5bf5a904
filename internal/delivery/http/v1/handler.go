package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"job-tracker-backend/internal/delivery/http/middleware"
	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// bindJSON binds the request body and reports binding failures to the
// error middleware. It returns false when the handler must stop.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.Error(&middleware.BindError{Err: err})
		return false
	}
	return true
}

// multipartOverhead is the room left for boundaries and part headers on
// top of the file size limit.
const multipartOverhead = 1 << 20

// readUpload reads a multipart file field, never holding more than
// maxBytes+1 bytes so oversize files are still detectable. The request body
// is capped before parsing, so a huge upload is cut off at the transport.
func readUpload(c *gin.Context, field string, maxBytes int64) (domain.Upload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	header, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Upload{}, apperror.Validation(fmt.Sprintf("File too large. Maximum size is %dMB", maxBytes>>20))
		}
		return domain.Upload{}, apperror.Validation("No file uploaded")
	}

	f, err := header.Open()
	if err != nil {
		return domain.Upload{}, apperror.Internal(fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return domain.Upload{}, apperror.Internal(fmt.Errorf("read upload: %w", err))
	}

	return domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDate accepts RFC 3339 timestamps and plain calendar dates.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperror.Validation("Application date must be a valid date")
}
