package auth

import (
	"net/url"
	"strings"
)

// IsSafeRedirect reports whether target stays on host. Relative paths are allowed;
// scheme-relative, foreign-host and non-http(s) targets are not.
func IsSafeRedirect(target, host string) bool {
	target = strings.TrimSpace(target)
	if target == "" {
		return false
	}
	// Browsers treat backslashes like slashes.
	target = strings.ReplaceAll(target, `\`, "/")
	if strings.HasPrefix(target, "///") {
		return false
	}
	for _, r := range target {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}

	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return u.Scheme == "" && u.Opaque == ""
	}
	return strings.EqualFold(u.Host, host)
}
