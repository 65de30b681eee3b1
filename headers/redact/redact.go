// headers/redact/redact.go
package redact

import "strings"

// Redacted replaces sensitive values in logs.
const Redacted = "REDACTED"

// sensitiveKeys are compared case-insensitively against header names and log field keys.
var sensitiveKeys = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
	"access_token":  true,
	"refresh_token": true,
	"accesstoken":   true,
	"password":      true,
}

// IsSensitiveKey reports whether a header name or field key carries credentials.
func IsSensitiveKey(key string) bool {
	return sensitiveKeys[strings.ToLower(key)]
}

// RedactSensitiveHeaderData redacts sensitive data based on the hideSensitiveData flag.
func RedactSensitiveHeaderData(hideSensitiveData bool, key, value string) string {
	if hideSensitiveData && IsSensitiveKey(key) {
		return Redacted
	}
	return value
}

// RedactHeaders returns a copy of the header map with sensitive values replaced.
func RedactHeaders(hideSensitiveData bool, headers map[string][]string) map[string][]string {
	out := make(map[string][]string, len(headers))
	for key, values := range headers {
		copied := make([]string, len(values))
		for i, value := range values {
			copied[i] = RedactSensitiveHeaderData(hideSensitiveData, key, value)
		}
		out[key] = copied
	}
	return out
}
