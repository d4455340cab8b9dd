package parser

import (
	"net/mail"
	"regexp"
	"strings"
)

// Address is a sender or recipient reduced to display name + bare email.
type Address struct {
	Name  string
	Email string
}

var (
	angleBracketRe = regexp.MustCompile(`<([^>]+)>`)
	bareEmailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// ExtractAddress reduces any textual address form to name + bare email.
// "Name <addr>" takes the bracketed portion; a bare user@host matches
// directly; anything else yields an empty email.
func ExtractAddress(input string) Address {
	input = strings.TrimSpace(input)
	if input == "" {
		return Address{}
	}

	if addr, err := mail.ParseAddress(input); err == nil {
		return Address{Name: addr.Name, Email: strings.ToLower(addr.Address)}
	}

	if matches := angleBracketRe.FindStringSubmatch(input); len(matches) > 1 {
		name := strings.TrimSpace(strings.SplitN(input, "<", 2)[0])
		name = strings.Trim(name, `"`)
		return Address{Name: name, Email: strings.ToLower(strings.TrimSpace(matches[1]))}
	}

	if m := bareEmailRe.FindString(input); m != "" {
		return Address{Email: strings.ToLower(m)}
	}

	return Address{}
}
