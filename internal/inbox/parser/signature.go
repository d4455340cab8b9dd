package parser

import (
	"regexp"
	"strings"
)

var (
	sigDelimiterRe = regexp.MustCompile(`(?m)^--\s*$`)
	sigClosingRe   = regexp.MustCompile(`(?mi)^(Best|Regards|Sincerely|Thanks|Cheers)\b`)
	sigMobileRe    = regexp.MustCompile(`(?mi)^Sent from my \w+`)
	phoneRe        = regexp.MustCompile(`(\+?\d[\d\s().-]{6,}\d)`)
)

// SplitSignature separates a cleaned plain-text body into (body, signature).
// It looks for an explicit "--" delimiter, a greeting-closing word, a mobile
// footer, or a short trailing contact block in the last 40% of the message.
func SplitSignature(text string) (string, string) {
	if text == "" {
		return "", ""
	}

	cut := len(text)
	sigStart := len(text)

	if loc := sigDelimiterRe.FindStringIndex(text); loc != nil && loc[0] < cut {
		cut = loc[0]
		// drop the delimiter line itself
		if nl := strings.IndexByte(text[loc[0]:], '\n'); nl >= 0 {
			sigStart = loc[0] + nl + 1
		} else {
			sigStart = len(text)
		}
	}
	if loc := sigClosingRe.FindStringIndex(text); loc != nil && loc[0] < cut {
		cut = loc[0]
		sigStart = loc[0]
	}
	if loc := sigMobileRe.FindStringIndex(text); loc != nil && loc[0] < cut {
		cut = loc[0]
		sigStart = loc[0]
	}

	if h := heuristicContactBlock(text); h >= 0 && h < cut {
		cut = h
		sigStart = h
	}

	body := strings.TrimRight(text[:cut], " \t\r\n")
	signature := strings.TrimSpace(text[min(sigStart, len(text)):])
	return body, signature
}

// heuristicContactBlock finds a contact-looking line (an @ or a phone number)
// in the last 40% of the message whose trailing block averages under 60
// characters per line, and returns its byte offset, or -1.
func heuristicContactBlock(text string) int {
	lines := strings.SplitAfter(text, "\n")
	offsets := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		offsets[i] = offset
		offset += len(line)
	}

	threshold := int(float64(len(text)) * 0.6)
	for i, line := range lines {
		if offsets[i] < threshold {
			continue
		}
		content := strings.TrimSpace(line)
		if content == "" {
			continue
		}
		if !strings.Contains(content, "@") && !phoneRe.MatchString(content) {
			continue
		}

		// Require the whole trailing block to look like a signature: short lines.
		var total, count int
		for _, rest := range lines[i:] {
			trimmed := strings.TrimRight(rest, "\r\n")
			if strings.TrimSpace(trimmed) == "" {
				continue
			}
			total += len(trimmed)
			count++
		}
		if count > 0 && total/count < 60 {
			return offsets[i]
		}
	}
	return -1
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
