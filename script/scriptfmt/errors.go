package scriptfmt

import "fmt"

type Kind int

const (
	KindTruncated Kind = iota
	KindUnsupportedFormat
	KindEncodingFailure
	KindOverflowTarget
	KindMissingTranslation
	KindOpcodeError
)

type CodecError struct {
	Kind Kind
	Msg  string
}

func (e *CodecError) Error() string { return e.Msg }

func errf(k Kind, format string, args ...any) error {
	return &CodecError{Kind: k, Msg: fmt.Sprintf(format, args...)}
}
