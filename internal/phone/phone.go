// Package phone canonicalizes phone numbers for storage and delivery.
package phone

import "strings"

// Normalize strips formatting from a raw phone number and returns the
// digits-only canonical form used as the storage key. A leading plus is
// removed. No length or country-code validation is performed; malformed
// input normalizes to an empty or partial string.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)

	var b strings.Builder
	b.Grow(len(raw))
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if r == '+' && i == 0 {
			// Kept during the scan, stripped below.
			continue
		}
	}
	return b.String()
}

// ForWhatsApp returns the number in the whatsapp:+E164 form the messaging
// provider expects. Input may be raw or already canonical.
func ForWhatsApp(raw string) string {
	if strings.HasPrefix(strings.TrimSpace(raw), "whatsapp:") {
		return strings.TrimSpace(raw)
	}
	digits := Normalize(raw)
	if digits == "" {
		return ""
	}
	return "whatsapp:+" + digits
}
