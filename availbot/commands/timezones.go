package commands

import (
	"time"

	"github.com/sahilm/fuzzy"
)

// commonTimezones is the suggestion pool for mistyped timezone names.
// Validation itself accepts any IANA identifier the host knows.
var commonTimezones = []string{
	"UTC",
	"Europe/Sofia",
	"Europe/London",
	"Europe/Paris",
	"Europe/Berlin",
	"Europe/Madrid",
	"Europe/Rome",
	"Europe/Amsterdam",
	"Europe/Athens",
	"Europe/Bucharest",
	"Europe/Istanbul",
	"Europe/Kyiv",
	"Europe/Moscow",
	"Europe/Stockholm",
	"Europe/Warsaw",
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Los_Angeles",
	"America/Toronto",
	"America/Sao_Paulo",
	"America/Mexico_City",
	"Asia/Tokyo",
	"Asia/Shanghai",
	"Asia/Seoul",
	"Asia/Singapore",
	"Asia/Kolkata",
	"Asia/Dubai",
	"Asia/Jerusalem",
	"Australia/Sydney",
	"Australia/Melbourne",
	"Pacific/Auckland",
	"Africa/Cairo",
	"Africa/Johannesburg",
}

// validTimezone reports whether name loads as an IANA location.
func validTimezone(name string) bool {
	if name == "" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}

// suggestTimezones fuzzy-matches the input against the common zone
// list, best matches first.
func suggestTimezones(input string, limit int) []string {
	matches := fuzzy.Find(input, commonTimezones)
	var out []string
	for _, m := range matches {
		out = append(out, m.Str)
		if len(out) >= limit {
			break
		}
	}
	return out
}
