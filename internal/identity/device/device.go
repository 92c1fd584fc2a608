// Package device derives a human-readable device name from the User-Agent
// header, shown when administrators review a user's sessions.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// DisplayName renders "Chrome on Windows" style labels.
func DisplayName(userAgentString string) string {
	if strings.TrimSpace(userAgentString) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		platform := ua.Platform()
		if platform != "" && browser != "" {
			return browser + " on " + platform
		}
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}
