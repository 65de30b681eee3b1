// version/version.go
package version

import "fmt"

// AppName holds the name of the application
var AppName = "go-menu-admin-client"

// Version holds the current version of the application
var Version = "0.3.0"

// GetAppName returns the name of the application
func GetAppName() string {
	return AppName
}

// GetVersion returns the current version of the application
func GetVersion() string {
	return Version
}

// GetUserAgent returns the default User-Agent header value, "<app>/<version>".
func GetUserAgent() string {
	return fmt.Sprintf("%s/%s", AppName, Version)
}
