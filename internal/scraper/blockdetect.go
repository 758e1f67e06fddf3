package scraper

import "strings"

// Anti-bot challenge markers. Only the head of the body carries these in
// practice; callers must pass at least the first bodyScanLimit characters.
const (
	challengeFormMarker = "/errors/validateCaptcha"
	captchaInstruction  = "Type the characters you see"
	errorPageMarker     = "something went wrong"

	errorScanLimit = 2000
	bodyScanLimit  = 3000
)

var blockedTitleMarkers = []string{"sorry", "captcha", "robot"}

// IsBlocked classifies a rendered page as an anti-automation challenge. The
// decision is a disjunction over independent signals; any single hit means
// blocked. It must be evaluated both after the initial navigation and after
// the search step, since a challenge can appear at either hop.
func IsBlocked(pageTitle, bodyPrefix string) bool {
	title := strings.ToLower(pageTitle)
	for _, marker := range blockedTitleMarkers {
		if strings.Contains(title, marker) {
			return true
		}
	}

	if strings.Contains(strings.ToLower(prefix(bodyPrefix, errorScanLimit)), errorPageMarker) {
		return true
	}

	head := prefix(bodyPrefix, bodyScanLimit)
	if strings.Contains(head, challengeFormMarker) || strings.Contains(head, captchaInstruction) {
		return true
	}

	return false
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
