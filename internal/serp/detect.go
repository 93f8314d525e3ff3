package serp

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
)

// BlockedError reports that the engine answered with a challenge or block
// page instead of results.
type BlockedError struct {
	Source string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("serp: blocked by %s", e.Source)
}

// Detector examines a raw engine response to determine if a protection
// mechanism blocked or challenged the request.
type Detector func(status int, header http.Header, body []byte) (detected bool, source string)

// DefaultDetectors returns the standard list of block-page detectors for
// direct engine fetches.
func DefaultDetectors() []Detector {
	return []Detector{
		detectGoogleSorry,
		detectRecaptcha,
		detectCloudflare,
	}
}

// DetectBlock runs the response through all provided detectors and returns
// the first match.
func DetectBlock(status int, header http.Header, body []byte, detectors []Detector) (bool, string) {
	for _, d := range detectors {
		if detected, source := d(status, header, body); detected {
			return true, source
		}
	}
	return false, ""
}

// detectGoogleSorry looks for Google's rate-limit interstitial.
func detectGoogleSorry(status int, header http.Header, body []byte) (bool, string) {
	if status == http.StatusTooManyRequests {
		return true, "Google"
	}
	// Redirects to /sorry/ carry the block page even on 200 after following
	if bytes.Contains(body, []byte("Our systems have detected unusual traffic")) ||
		bytes.Contains(body, []byte("/sorry/index")) {
		return true, "Google"
	}
	return false, ""
}

// detectRecaptcha looks for an embedded captcha challenge.
func detectRecaptcha(status int, header http.Header, body []byte) (bool, string) {
	if bytes.Contains(body, []byte("g-recaptcha")) ||
		bytes.Contains(body, []byte("recaptcha/api.js")) {
		return true, "reCAPTCHA"
	}
	return false, ""
}

// detectCloudflare looks for common Cloudflare challenge/block signatures.
func detectCloudflare(status int, header http.Header, body []byte) (bool, string) {
	if status == http.StatusForbidden || status == http.StatusServiceUnavailable {
		if strings.Contains(strings.ToLower(header.Get("Server")), "cloudflare") {
			return true, "Cloudflare"
		}
		if bytes.Contains(body, []byte("cf-browser-verification")) ||
			bytes.Contains(body, []byte("cf-turnstile")) ||
			bytes.Contains(body, []byte("Attention Required! | Cloudflare")) {
			return true, "Cloudflare"
		}
	}
	return false, ""
}
