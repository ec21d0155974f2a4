package ratelimit

import (
	"net/http"
	"strings"
)

const maxUserAgentKeyLen = 50

// ClientKey derives a best-effort client identity from request headers:
// the first forwarded-for address, then the real-IP header, then a
// truncated user-agent tagged as synthetic. Forwarded headers are
// attacker-controlled unless the deployment overwrites them at a trusted
// edge, so this is abuse mitigation, not authentication.
func ClientKey(header http.Header) string {
	if fwd := header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if realIP := header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ua := header.Get("User-Agent")
	if ua == "" {
		ua = "unknown"
	}
	if len(ua) > maxUserAgentKeyLen {
		ua = ua[:maxUserAgentKeyLen]
	}
	return "ua-" + ua
}
