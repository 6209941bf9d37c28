// Package auth selects the identity posture used for extraction attempts.
//
// A blocked attempt walks an ordered chain of contexts: anonymous first,
// then a cookie jar when the operator provisioned one, then mobile-client
// emulation. The chain is rebuilt per request; nothing is remembered across
// requests.
package auth

import "os"

// Mode identifies an authentication posture for the extraction engine
type Mode string

const (
	ModeAnonymous Mode = "anonymous"
	ModeCookies   Mode = "cookies"
	ModeMobile    Mode = "mobile"
)

// MobileUserAgent is sent alongside mobile-client emulation to look like a
// phone browser to the source platform.
const MobileUserAgent = "Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"

// DockerSecretCookiePath is checked in addition to the configured jar path.
// A var so tests can point it away from the host's real secrets mount.
var DockerSecretCookiePath = "/run/secrets/cookies_txt"

// Context is one authentication posture for a single extraction attempt
type Context struct {
	Mode       Mode
	CookieFile string // set only for ModeCookies
}

func (c Context) String() string { return string(c.Mode) }

// CookiePath returns the usable cookie jar path, preferring the Docker
// secrets location over the configured one. Empty when no jar is readable.
func CookiePath(configured string) string {
	if fileExists(DockerSecretCookiePath) {
		return DockerSecretCookiePath
	}
	if configured != "" && fileExists(configured) {
		return configured
	}
	return ""
}

// Chain builds the fallback order for one request: anonymous, then cookie
// auth when a jar is available, then mobile emulation. Each context is tried
// at most once.
func Chain(configuredCookieFile string) []Context {
	chain := []Context{{Mode: ModeAnonymous}}
	if jar := CookiePath(configuredCookieFile); jar != "" {
		chain = append(chain, Context{Mode: ModeCookies, CookieFile: jar})
	}
	chain = append(chain, Context{Mode: ModeMobile})
	return chain
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
