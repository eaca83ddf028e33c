package app

import (
	"net/mail"
	"time"
)

// parseRFC2822 parses the Date response header GetConfig returns alongside
// the configuration (spec.md §4.G). RFC 2822 dates are a subset of the
// RFC 5322 grammar net/mail already implements, so no extra dependency is
// needed for this one-line parse.
func parseRFC2822(s string) (time.Time, error) {
	return mail.ParseDate(s)
}
