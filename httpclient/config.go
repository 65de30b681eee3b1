// httpclient/config.go
// Description: This file contains functions to load and validate configuration values from a JSON file or environment variables.
package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/deploymenttheory/go-menu-admin-client/logger"
	"github.com/deploymenttheory/go-menu-admin-client/version"
)

const (
	DefaultLogLevelString        = "LogLevelInfo"
	DefaultLogOutputFormatString = logger.LogOutputConsole
	DefaultLogConsoleSeparator   = "	"
	DefaultHideSensitiveData     = true
	DefaultMaxConcurrentRequests = 5
	DefaultCustomTimeout         = 30 * time.Second
	DefaultFollowRedirects       = false
	DefaultMaxRedirects          = 5
	DefaultRequestsPerSecond     = 0
)

// Environment variable names read by LoadConfigFromEnv.
const (
	EnvBaseURL               = "API_BASE_URL"
	EnvLegacyBaseURL         = "VITE_API_BASE_URL"
	EnvLogLevel              = "LOG_LEVEL"
	EnvLogOutputFormat       = "LOG_OUTPUT_FORMAT"
	EnvHideSensitiveData     = "HIDE_SENSITIVE_DATA"
	EnvCustomTimeout         = "CUSTOM_TIMEOUT"
	EnvFollowRedirects       = "FOLLOW_REDIRECTS"
	EnvMaxRedirects          = "MAX_REDIRECTS"
	EnvMaxConcurrentRequests = "MAX_CONCURRENT_REQUESTS"
	EnvRequestsPerSecond     = "REQUESTS_PER_SECOND"
	EnvProxyURL              = "PROXY_URL"
	EnvEnableCookieJar       = "ENABLE_COOKIE_JAR"
)

// UnmarshalJSON accepts custom_timeout as a Go duration string ("15s") or as whole seconds.
func (c *ClientConfig) UnmarshalJSON(data []byte) error {
	type alias ClientConfig
	aux := struct {
		*alias
		CustomTimeout json.RawMessage `json:"custom_timeout,omitempty"`
	}{alias: (*alias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.CustomTimeout) == 0 {
		return nil
	}

	var text string
	if err := json.Unmarshal(aux.CustomTimeout, &text); err == nil {
		d, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("custom_timeout: %w", err)
		}
		c.CustomTimeout = d
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(aux.CustomTimeout, &seconds); err != nil {
		return fmt.Errorf("custom_timeout: expected duration string or seconds: %w", err)
	}
	c.CustomTimeout = time.Duration(seconds * float64(time.Second))
	return nil
}

// LoadConfigFromFile loads http client configuration settings from a JSON file.
func LoadConfigFromFile(filepath string) (*ClientConfig, error) {
	absPath, err := validateFilePath(filepath)
	if err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	byteValue, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("could not read file: %w", err)
	}

	var config ClientConfig
	if err := json.Unmarshal(byteValue, &config); err != nil {
		return nil, fmt.Errorf("could not unmarshal JSON: %w", err)
	}

	SetDefaultValuesClientConfig(&config)

	return &config, nil
}

// LoadConfigFromEnv loads HTTP client configuration settings from environment variables.
// If any environment variables are not set, the default values defined in the constants are used instead.
func LoadConfigFromEnv() (*ClientConfig, error) {
	baseURL := getEnvAsString(EnvBaseURL, "")
	if baseURL == "" {
		baseURL = getEnvAsString(EnvLegacyBaseURL, "")
	}

	config := &ClientConfig{
		BaseURL:               baseURL,
		LogLevel:              getEnvAsString(EnvLogLevel, DefaultLogLevelString),
		LogOutputFormat:       getEnvAsString(EnvLogOutputFormat, DefaultLogOutputFormatString),
		HideSensitiveData:     getEnvAsBool(EnvHideSensitiveData, DefaultHideSensitiveData),
		CustomTimeout:         getEnvAsDuration(EnvCustomTimeout, DefaultCustomTimeout),
		FollowRedirects:       getEnvAsBool(EnvFollowRedirects, DefaultFollowRedirects),
		MaxRedirects:          getEnvAsInt(EnvMaxRedirects, DefaultMaxRedirects),
		MaxConcurrentRequests: getEnvAsInt(EnvMaxConcurrentRequests, DefaultMaxConcurrentRequests),
		RequestsPerSecond:     getEnvAsFloat(EnvRequestsPerSecond, DefaultRequestsPerSecond),
		ProxyURL:              getEnvAsString(EnvProxyURL, ""),
		EnableCookieJar:       getEnvAsBool(EnvEnableCookieJar, false),
	}

	SetDefaultValuesClientConfig(config)

	return config, nil
}

func validateClientConfig(config ClientConfig) error {
	if config.BaseURL == "" {
		return errors.New("base url is required, set BaseURL or " + EnvBaseURL)
	}
	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base url must use http or https: %s", config.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base url has no host: %s", config.BaseURL)
	}

	validLogLevels := []string{
		"LogLevelDebug",
		"LogLevelInfo",
		"LogLevelWarn",
		"LogLevelError",
		"LogLevelDPanic",
		"LogLevelPanic",
		"LogLevelFatal",
		"LogLevelNone",
	}
	if !slices.Contains(validLogLevels, config.LogLevel) {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	validLogFormats := []string{logger.LogOutputJSON, logger.LogOutputConsole}
	if !slices.Contains(validLogFormats, config.LogOutputFormat) {
		return fmt.Errorf("invalid log output format: %s", config.LogOutputFormat)
	}

	if config.MaxConcurrentRequests < 1 {
		return errors.New("maximum concurrent requests cannot be less than 1")
	}

	if config.CustomTimeout < 0 {
		return errors.New("timeout cannot be less than 0 seconds")
	}

	if config.RequestsPerSecond < 0 {
		return errors.New("requests per second cannot be negative")
	}

	if config.FollowRedirects && config.MaxRedirects < 1 {
		return errors.New("max redirects cannot be less than 1")
	}

	return nil
}

// SetDefaultValuesClientConfig sets default values for the client configuration. Ensuring that all fields have a valid or minimum value.
// Boolean fields are left as given since false is a meaningful choice.
func SetDefaultValuesClientConfig(config *ClientConfig) {
	setDefaultString(&config.LogLevel, DefaultLogLevelString)
	setDefaultString(&config.LogOutputFormat, DefaultLogOutputFormatString)
	setDefaultString(&config.LogConsoleSeparator, DefaultLogConsoleSeparator)
	setDefaultString(&config.UserAgent, version.GetUserAgent())
	setDefaultInt(&config.MaxConcurrentRequests, DefaultMaxConcurrentRequests)
	setDefaultInt(&config.MaxRedirects, DefaultMaxRedirects)
	setDefaultDuration(&config.CustomTimeout, DefaultCustomTimeout)
}

func setDefaultString(field *string, defaultValue string) {
	if *field == "" {
		*field = defaultValue
	}
}

func setDefaultInt(field *int, defaultValue int) {
	if *field == 0 {
		*field = defaultValue
	}
}

func setDefaultDuration(field *time.Duration, defaultValue time.Duration) {
	if *field == 0 {
		*field = defaultValue
	}
}

func getEnvAsString(name string, defaultVal string) string {
	if value, exists := os.LookupEnv(name); exists && value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	if value, exists := os.LookupEnv(name); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsInt(name string, defaultVal int) int {
	if value, exists := os.LookupEnv(name); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	if value, exists := os.LookupEnv(name); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getEnvAsDuration accepts Go duration strings ("15s") or whole seconds ("15").
func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	value, exists := os.LookupEnv(name)
	if !exists || value == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
