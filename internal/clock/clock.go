// Package clock supplies the RFC 7231 date strings the response encoder
// stamps onto every response, plus the random upload-filename tokens the
// POST handler needs.
package clock

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// HTTPDate formats t per RFC 7231 (the same layout net/http uses for the
// Date header), in GMT.
func HTTPDate(t time.Time) string {
	return t.UTC().Format(http1123)
}

const http1123 = "Mon, 02 Jan 2006 15:04:05 GMT"

// UploadTimestamp formats t as YYYYMMDD_HHMMSS for upload filenames.
func UploadTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// RandomToken4 returns a 4-character lowercase hex token drawn from
// crypto/rand via google/uuid, so two uploads landing in the same second
// still get distinct filenames.
func RandomToken4() string {
	id := uuid.New()
	hex := strings.ReplaceAll(id.String(), "-", "")
	return hex[:4]
}
