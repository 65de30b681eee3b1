// response/success.go
/* Responsible for handling successful API responses. It reads the response body and
unmarshals it into the caller's output value. */
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/deploymenttheory/go-menu-admin-client/logger"
	"go.uber.org/zap"
)

// HandleAPISuccessResponse reads the response body and decodes it into out.
//   - out == nil: the body is drained and discarded.
//   - out is *[]byte: the raw body is stored.
//   - otherwise the body is decoded as JSON; an empty body leaves out untouched.
//
// The body is consumed and closed.
func HandleAPISuccessResponse(resp *http.Response, out any, log logger.Logger) error {
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return log.Error("Failed to read response body", zap.Error(err))
	}

	if raw, ok := out.(*[]byte); ok {
		*raw = bodyBytes
		return nil
	}

	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}

	contentType, _ := parseHeader(resp.Header.Get("Content-Type"))
	if contentType != "" && contentType != "application/json" {
		log.Debug("Decoding non-JSON content type as JSON", zap.String("content_type", contentType))
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		log.Warn("JSON unmarshal error", zap.Int("status_code", resp.StatusCode), zap.Error(err))
		return fmt.Errorf("decode response body: %w", err)
	}

	return nil
}
