package scriptfmt

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// TextCodec decodes and encodes the byte strings embedded in a script
// image. The zero value is not usable; construct one with NewTextCodec.
type TextCodec struct {
	enc encoding.Encoding
}

// NewTextCodec resolves name to a text codec. "shiftjis"/"sjis"/"932"
// selects Shift-JIS directly (the engine's default); anything else is
// looked up as an encoding label through x/text's htmlindex registry.
// 932 is the only numeric code page recognized; other bare code-page
// numbers are rejected as unknown.
func NewTextCodec(name string) (*TextCodec, error) {
	switch name {
	case "", "shiftjis", "shift_jis", "sjis", "932":
		return &TextCodec{enc: japanese.ShiftJIS}, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errf(KindUnsupportedFormat, "script: unknown text codec %q: %v", name, err)
	}
	return &TextCodec{enc: enc}, nil
}

// Decode converts codec-encoded bytes to a UTF-8 string.
func (c *TextCodec) Decode(b []byte) (string, error) {
	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", errf(KindEncodingFailure, "script: decoding text: %v", err)
	}
	return string(out), nil
}

// Encode converts a UTF-8 string into codec-encoded bytes.
func (c *TextCodec) Encode(s string) ([]byte, error) {
	out, _, err := transform.Bytes(c.enc.NewEncoder(), []byte(s))
	if err != nil {
		return nil, errf(KindEncodingFailure, "script: encoding %q: %v", s, err)
	}
	return out, nil
}
