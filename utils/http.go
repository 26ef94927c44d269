package utils

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SetHeaderNoCache sets the no cache header.
func SetHeaderNoCache(c *gin.Context) {
	c.Header("Expires", "Fri, 01 Jan 1980 00:00:00 GMT")
	c.Header("Pragma", "no-cache")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
}

// SetHeaderCacheForever sets the cache forever header, for content that never
// changes under its URL.
func SetHeaderCacheForever(c *gin.Context) {
	expires := time.Now().Add(365 * 24 * time.Hour)
	c.Header("Expires", expires.UTC().Format(http.TimeFormat))
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
}

// SendAttachment streams size bytes from r to the client as a download named
// name. A negative size sends the body without Content-Length.
func SendAttachment(c *gin.Context, name, contentType string, r io.Reader, size int64) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = "attachment"
	}
	c.DataFromReader(http.StatusOK, size, contentType, r, map[string]string{
		"Content-Disposition": disposition,
	})
}

// AttachmentName is the download name of a record export.
func AttachmentName(prefix string, id uint64, ext string) string {
	return fmt.Sprintf("%s-%d%s", prefix, id, ext)
}
