package sections

import (
	"regexp"
	"strings"
)

var (
	leadingDecorationRe  = regexp.MustCompile(`^(?:=+\s*)+`)
	trailingDecorationRe = regexp.MustCompile(`(?:\s*=+)+$`)
	partMarkerRe         = regexp.MustCompile(`(?i)\s*\[\s*PART\s*\d+\s*/\s*\d+\s*\]\s*`)
	segmentPrefixRe      = regexp.MustCompile(`^(?:\[[^\]]*\]\s*)+`)
	whitespaceRe         = regexp.MustCompile(`\s+`)
)

// NormalizeTitle strips decorative "=" runs from both ends of a title.
// It is idempotent.
func NormalizeTitle(title string) string {
	if title == "" {
		return ""
	}
	title = leadingDecorationRe.ReplaceAllString(title, "")
	return trailingDecorationRe.ReplaceAllString(title, "")
}

// StripPartMarker removes "[PART n/m]" markers and collapses whitespace.
func StripPartMarker(title string) string {
	title = partMarkerRe.ReplaceAllString(title, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(title, " "))
}

// StripSegmentPrefix removes leading bracket tags such as "[DAILY] ".
func StripSegmentPrefix(title string) string {
	return segmentPrefixRe.ReplaceAllString(title, "")
}
