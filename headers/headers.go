// headers/headers.go
package headers

import (
	"net/http"
	"strings"

	"github.com/deploymenttheory/go-menu-admin-client/headers/redact"
	"github.com/deploymenttheory/go-menu-admin-client/logger"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderUserAgent     = "User-Agent"
	HeaderRequestID     = "X-Request-ID"

	ContentTypeJSON = "application/json"
	bearerPrefix    = "Bearer "
)

// HeaderHandler is responsible for managing and setting headers on HTTP requests.
type HeaderHandler struct {
	req               *http.Request // The http.Request for which headers are being managed
	log               logger.Logger // The logger to use for logging headers
	hideSensitiveData bool          // Redact credentials when logging
}

// NewHeaderHandler creates a new instance of HeaderHandler for a given http.Request and logger.
func NewHeaderHandler(req *http.Request, log logger.Logger, hideSensitiveData bool) *HeaderHandler {
	return &HeaderHandler{
		req:               req,
		log:               log,
		hideSensitiveData: hideSensitiveData,
	}
}

// SetAuthorization sets "Authorization: Bearer <token>" with the token attached verbatim.
// An empty token leaves the request without an Authorization header.
func (h *HeaderHandler) SetAuthorization(token string) {
	if token == "" {
		return
	}
	h.req.Header.Set(HeaderAuthorization, bearerPrefix+token)
}

// SetContentType sets the Content-Type header for the request.
func (h *HeaderHandler) SetContentType(contentType string) {
	h.req.Header.Set(HeaderContentType, contentType)
}

// SetAccept sets the Accept header for the request.
func (h *HeaderHandler) SetAccept(acceptHeader string) {
	h.req.Header.Set(HeaderAccept, acceptHeader)
}

// SetUserAgent sets the User-Agent header for the request.
func (h *HeaderHandler) SetUserAgent(userAgent string) {
	h.req.Header.Set(HeaderUserAgent, userAgent)
}

// SetRequestID sets the X-Request-ID header used to correlate client and server logs.
func (h *HeaderHandler) SetRequestID(requestID string) {
	h.req.Header.Set(HeaderRequestID, requestID)
}

// LogHeaders logs the request headers at debug level, redacting credentials when configured.
func (h *HeaderHandler) LogHeaders(event string) {
	if h.log.GetLogLevel() > logger.LogLevelDebug {
		return
	}
	h.log.LogRequestStart(
		event,
		h.req.Header.Get(HeaderRequestID),
		h.req.Method,
		h.req.URL.String(),
		redact.RedactHeaders(h.hideSensitiveData, h.req.Header),
	)
}

// BearerToken extracts the token from a bearer Authorization header value.
func BearerToken(value string) (string, bool) {
	if !strings.HasPrefix(value, bearerPrefix) {
		return "", false
	}
	return strings.TrimPrefix(value, bearerPrefix), true
}
