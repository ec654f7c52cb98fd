// Package proxy forwards gateway requests to the backing services.
package proxy

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Rewrite maps the incoming request path onto the upstream path.
type Rewrite func(path string) string

// StripPrefix drops prefix and prepends replacement, so
// StripPrefix("/api/patients", "/patients") sends /api/patients/42 to
// /patients/42.
func StripPrefix(prefix, replacement string) Rewrite {
	return func(path string) string {
		return replacement + strings.TrimPrefix(path, prefix)
	}
}

// Fixed sends every request to the same upstream path.
func Fixed(path string) Rewrite {
	return func(string) string { return path }
}

// hop-by-hop headers are never forwarded
var hopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

type Forwarder struct {
	client *http.Client
	log    zerolog.Logger
}

func NewForwarder(client *http.Client, log zerolog.Logger) *Forwarder {
	if client == nil {
		client = http.DefaultClient
	}
	return &Forwarder{client: client, log: log}
}

// To returns a handler that relays the request to serviceURL with its path
// rewritten. Upstream status, headers and body are passed back unchanged;
// an unreachable upstream answers 502.
func (f *Forwarder) To(serviceURL string, rewrite Rewrite) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetURL := serviceURL + rewrite(c.Request.URL.Path)
		if c.Request.URL.RawQuery != "" {
			targetURL += "?" + c.Request.URL.RawQuery
		}

		var bodyBytes []byte
		if c.Request.Body != nil {
			var err error
			bodyBytes, err = io.ReadAll(c.Request.Body)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read request body"})
				return
			}
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, bytes.NewReader(bodyBytes))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create request"})
			return
		}
		copyHeaders(req.Header, c.Request.Header)
		req.Header.Set("X-Forwarded-For", c.ClientIP())

		resp, err := f.client.Do(req)
		if err != nil {
			f.log.Error().Err(err).Str("target", targetURL).Msg("Error proxying request")
			c.JSON(http.StatusBadGateway, gin.H{"message": "Service unavailable"})
			return
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to read response"})
			return
		}

		copyHeaders(c.Writer.Header(), resp.Header)
		c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), respBody)
	}
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if hopHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
