package transfer

import "regexp"

var groupLinkPattern = regexp.MustCompile(`^https?://(?:t\.me|telegram\.me)/([a-zA-Z0-9_]+)$`)

// ParseGroupLink extracts the public group name from a t.me or telegram.me
// URL. Any other shape fails with ErrInvalidReference before any network
// call is attempted.
func ParseGroupLink(link string) (string, error) {
	m := groupLinkPattern.FindStringSubmatch(link)
	if m == nil {
		return "", ErrInvalidReference
	}
	return m[1], nil
}

// ValidGroupLink reports whether link is an acceptable group reference.
func ValidGroupLink(link string) bool {
	return groupLinkPattern.MatchString(link)
}
