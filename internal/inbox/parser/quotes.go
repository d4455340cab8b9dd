package parser

import (
	"regexp"
	"strings"
)

// Patterns that mark the start of quoted history in plain-text bodies.
// The body is truncated at the earliest match across all of them.
var quoteMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?mi)^On\s.{0,200}wrote:\s*$`),
	regexp.MustCompile(`(?mi)^On\s.{0,200}\n?.{0,200}wrote:\s*$`),
	regexp.MustCompile(`(?mi)^-{3,}\s*Original Message\s*-{3,}`),
	regexp.MustCompile(`(?m)^From:\s`),
	regexp.MustCompile(`(?mi)^-{3,}\s*Forwarded [Mm]essage\s*-{3,}`),
	regexp.MustCompile(`(?mi)^Begin forwarded message:`),
	regexp.MustCompile(`(?mi)^Sent from my (iPhone|iPad|Android|Mobile)`),
	regexp.MustCompile(`(?m)^\d{4}-\d{2}-\d{2}\s.{0,200}<[^>]+@[^>]+>`),
	regexp.MustCompile(`(?m)^\d{1,2}[./]\d{1,2}[./]\d{2,4}\s.{0,200}<[^>]+@[^>]+>`),
}

// StripQuotedText removes quoted reply history from a plain-text body. If a
// bare `>`-quoted line appears before every regex match, truncation happens
// there instead.
func StripQuotedText(text string) string {
	if text == "" {
		return ""
	}

	cut := len(text)
	for _, re := range quoteMarkers {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}

	if q := firstQuoteLineOffset(text); q >= 0 && q < cut {
		cut = q
	}

	return strings.TrimRight(text[:cut], " \t\r\n")
}

// firstQuoteLineOffset returns the byte offset of the first line starting
// with a `>` quote marker, or -1.
func firstQuoteLineOffset(text string) int {
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, ">") {
			return offset
		}
		offset += len(line)
	}
	return -1
}
