package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors matching the quote containers the major mail clients wrap
// history in.
const quoteContainerSelector = `.gmail_quote, [class^="gmail_quote"], .gmail_attr, #OutlookMessageHeader, .yahoo_quoted, blockquote[type="cite"]`

// Selectors matching known signature containers.
const signatureSelector = `.gmail_signature, [class*="gmail_signature"], #Signature`

var (
	trailingBreaksRe = regexp.MustCompile(`(?i)(\s|<br\s*/?>|&nbsp;)+$`)
	htmlSigSplitRe   = regexp.MustCompile(`(?i)(?:<br\s*/?>|<p[^>]*>)\s*--\s*`)
)

// StripQuotedHTML removes quoted history from an HTML body: known quote
// containers, every blockquote, horizontal rules, and trailing break runs.
func StripQuotedHTML(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparseable markup: best effort is the raw input.
		return html
	}

	doc.Find(quoteContainerSelector).Remove()
	doc.Find("blockquote").Remove()
	doc.Find("hr").Remove()

	out, err := doc.Find("body").Html()
	if err != nil {
		return html
	}
	return trailingBreaksRe.ReplaceAllString(out, "")
}

// SplitHTMLSignature separates an HTML body into (body, signature). It looks
// for a known signature container first, then a break followed by a bare
// "--" delimiter.
func SplitHTMLSignature(html string) (string, string) {
	if html == "" {
		return "", ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html, ""
	}

	sel := doc.Find(signatureSelector).First()
	if sel.Length() > 0 {
		signature, err := goquery.OuterHtml(sel)
		if err != nil {
			return html, ""
		}
		sel.Remove()
		body, err := doc.Find("body").Html()
		if err != nil {
			return html, ""
		}
		return trailingBreaksRe.ReplaceAllString(body, ""), signature
	}

	if loc := htmlSigSplitRe.FindStringIndex(html); loc != nil {
		body := trailingBreaksRe.ReplaceAllString(html[:loc[0]], "")
		signature := strings.TrimSpace(html[loc[1]:])
		return body, signature
	}

	return html, ""
}
