package parser

import (
	"strings"
	"testing"
)

func TestStripQuotedHTML(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wants   []string
		rejects []string
	}{
		{
			name:    "gmail quote container",
			in:      `<div>New reply</div><div class="gmail_quote">On Mon, Jane wrote:<blockquote>old</blockquote></div>`,
			wants:   []string{"New reply"},
			rejects: []string{"gmail_quote", "old"},
		},
		{
			name:    "outlook header",
			in:      `<p>Agreed.</p><div id="OutlookMessageHeader">From: Bob</div><p>old body</p>`,
			wants:   []string{"Agreed."},
			rejects: []string{"OutlookMessageHeader"},
		},
		{
			name:    "apple mail cite blockquote",
			in:      `<div>Thanks!</div><blockquote type="cite">earlier text</blockquote>`,
			wants:   []string{"Thanks!"},
			rejects: []string{"earlier text"},
		},
		{
			name:    "yahoo quoted",
			in:      `<div>Reply here</div><div class="yahoo_quoted">history</div>`,
			wants:   []string{"Reply here"},
			rejects: []string{"history"},
		},
		{
			name:    "plain blockquote and hr",
			in:      `<p>Fresh text</p><hr><blockquote>quoted</blockquote>`,
			wants:   []string{"Fresh text"},
			rejects: []string{"<hr", "quoted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripQuotedHTML(tt.in)
			for _, w := range tt.wants {
				if !strings.Contains(got, w) {
					t.Errorf("output %q missing %q", got, w)
				}
			}
			for _, r := range tt.rejects {
				if strings.Contains(got, r) {
					t.Errorf("output %q still contains %q", got, r)
				}
			}
		})
	}
}

func TestSplitHTMLSignatureContainer(t *testing.T) {
	in := `<div>Hello there</div><div class="gmail_signature">Jane Doe<br>CEO</div>`

	body, sig := SplitHTMLSignature(in)

	if !strings.Contains(sig, "Jane Doe") {
		t.Errorf("signature = %q, want it to contain Jane Doe", sig)
	}
	if strings.Contains(body, "Jane Doe") {
		t.Errorf("body %q still contains signature", body)
	}
	if !strings.Contains(body, "Hello there") {
		t.Errorf("body %q lost its content", body)
	}
}

func TestSplitHTMLSignatureDelimiter(t *testing.T) {
	in := `<div>Hello there</div><br>-- <br>Jane Doe`

	body, sig := SplitHTMLSignature(in)

	if !strings.Contains(sig, "Jane Doe") {
		t.Errorf("signature = %q, want it to contain Jane Doe", sig)
	}
	if !strings.Contains(body, "Hello there") {
		t.Errorf("body = %q, want it to keep the content", body)
	}
}

func TestSplitHTMLSignatureNone(t *testing.T) {
	in := `<div>No signature here</div>`

	body, sig := SplitHTMLSignature(in)

	if sig != "" {
		t.Errorf("expected no signature, got %q", sig)
	}
	if body != in {
		t.Errorf("body = %q, want original input", body)
	}
}
