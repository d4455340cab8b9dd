package parser

import "testing"

func TestStripQuotedText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "gmail reply marker",
			in:   "Sounds good, will do.\n\nOn Mon, Jan 5, 2026 at 9:12 AM Jane <jane@example.com> wrote:\n> The old text\n> More old text",
			want: "Sounds good, will do.",
		},
		{
			name: "outlook original message",
			in:   "Agreed.\n\n-----Original Message-----\nFrom: bob@example.com\nSubject: old",
			want: "Agreed.",
		},
		{
			name: "from header line",
			in:   "See below.\n\nFrom: Carol <carol@example.com>\nSent: Tuesday",
			want: "See below.",
		},
		{
			name: "forwarded message banner",
			in:   "FYI\n\n---------- Forwarded message ----------\nblah",
			want: "FYI",
		},
		{
			name: "begin forwarded message",
			in:   "FYI\n\nBegin forwarded message:\nblah",
			want: "FYI",
		},
		{
			name: "bare quoted lines",
			in:   "Thanks!\n> previous text\n> more previous",
			want: "Thanks!",
		},
		{
			name: "timestamp with address",
			in:   "Done.\n\n2026-01-05 09:12 GMT+01:00 Jane Doe <jane@example.com>:\nold text",
			want: "Done.",
		},
		{
			name: "no quotes",
			in:   "Plain message with nothing quoted.",
			want: "Plain message with nothing quoted.",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripQuotedText(tt.in); got != tt.want {
				t.Errorf("StripQuotedText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripQuotedTextEarliestMarkerWins(t *testing.T) {
	in := "Reply text.\n> quoted line\n\nOn Mon Jane wrote:\nold"

	got := StripQuotedText(in)

	if got != "Reply text." {
		t.Errorf("StripQuotedText() = %q, want %q", got, "Reply text.")
	}
}
