package archive

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MinContentLength is the shortest page, in characters, accepted as a real snapshot.
	MinContentLength = 1000

	// proxyDownMarker is what the proxy serves instead of the page when it is unavailable.
	proxyDownMarker = "AllOrigins is down"
)

var (
	blockedTitle = regexp.MustCompile(`(?i)<title>.*(403 Forbidden|Access Denied|Just a moment|Login|Sign in|Attention Required).*</title>`)
	blockedBody  = regexp.MustCompile(`(?i)Cloudflare|checking your browser|hCaptcha`)
)

// Validate runs the content gate on a fetched page. Checks run in order and
// the first failing one decides the reason.
func Validate(html string) error {
	if html == "" || strings.Contains(html, proxyDownMarker) {
		return failure(ReasonProxyDown, "The archiving proxy service may be down.")
	}
	if blockedTitle.MatchString(html) || blockedBody.MatchString(html) {
		return failure(ReasonBlocked, "Page is protected by a login, CAPTCHA, or other block.")
	}
	if utf8.RuneCountInString(html) < MinContentLength {
		return failure(ReasonIncomplete, "Archived content was incomplete, which may indicate a block.")
	}
	return nil
}
