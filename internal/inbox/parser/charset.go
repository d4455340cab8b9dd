package parser

import (
	"io"

	gomessage "github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	htmlcharset "golang.org/x/net/html/charset"
)

func init() {
	// Mail in the wild arrives in every legacy encoding; route unknown
	// charsets through the html charset tables instead of failing the part.
	gomessage.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return htmlcharset.NewReaderLabel(charset, input)
	}
}
