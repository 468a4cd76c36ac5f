// Package environment reads runtime environment configuration.
package environment

import (
	"fmt"
	"os"

	"github.com/meza/modrinth-pack-builder/internal/constants"
)

var appVersion = "REPL_VERSION"

// ModrinthAPIKey returns the personal access token sent to Modrinth, or an
// empty string when requests should be anonymous.
func ModrinthAPIKey() string {
	key, present := os.LookupEnv("MODRINTH_API_KEY")
	if present {
		return key
	}

	return ""
}

func AppVersion() string {
	return appVersion
}

func UserAgent() string {
	return fmt.Sprintf("github_com/meza/%s/%s", constants.AppName, AppVersion())
}
