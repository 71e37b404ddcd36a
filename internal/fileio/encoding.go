package fileio

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeReader wraps r so it yields UTF-8. charset is a WHATWG encoding label
// ("utf-8", "windows-1252", "latin1", ...); empty means UTF-8. A leading byte
// order mark is consumed and, for UTF-16 input, overrides the label.
func DecodeReader(r io.Reader, charset string) (io.Reader, error) {
	enc, err := lookupCharset(charset)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

func lookupCharset(charset string) (encoding.Encoding, error) {
	label := strings.TrimSpace(charset)
	if label == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, eris.Wrapf(err, "charset: unsupported encoding %q", charset)
	}
	return enc, nil
}
