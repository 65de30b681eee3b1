// cookiejar/cookiejar.go
/* Package cookiejar attaches a cookie jar to the HTTP client. The admin API authenticates with
bearer tokens, but load balancers in front of it may pin a session to a backend with cookies. */
package cookiejar

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/deploymenttheory/go-menu-admin-client/logger"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// SetupCookieJar gives client a jar scoped by the public suffix list when enabled.
func SetupCookieJar(client *http.Client, enableCookieJar bool, log logger.Logger) error {
	if !enableCookieJar {
		return nil
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		log.Error("Failed to create cookie jar", zap.Error(err))
		return fmt.Errorf("setup cookie jar: %w", err)
	}
	client.Jar = jar
	log.Debug("Cookie jar enabled")
	return nil
}

// CookieNames lists the names of the cookies the client would send to u. Values are left out
// so the result is safe to log.
func CookieNames(client *http.Client, u *url.URL) []string {
	if client.Jar == nil {
		return nil
	}
	cookies := client.Jar.Cookies(u)
	names := make([]string, 0, len(cookies))
	for _, c := range cookies {
		names = append(names, c.Name)
	}
	return names
}
