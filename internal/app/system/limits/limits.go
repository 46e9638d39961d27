// internal/app/system/limits/limits.go
package limits

import (
	"net/http"
	"strings"
)

// Request body size limits for the write endpoints.
const (
	// MaxUploadMemory is how much of a multipart file upload is held in
	// memory; the rest spills to temp files.
	MaxUploadMemory = 32 << 20 // 32 MB

	// MaxUploadBody caps a whole section upload request.
	MaxUploadBody = 256 << 20 // 256 MB

	// MaxFormSize caps url-encoded form submissions (admin resource form,
	// link form, login).
	MaxFormSize = 64 << 10 // 64 KB
)

// BodyLimit caps request bodies before anything parses them: multipart
// requests get MaxUploadBody, everything else MaxFormSize.
func BodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && r.Body != http.NoBody {
			limit := int64(MaxFormSize)
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
				limit = MaxUploadBody
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}
