package cardid

import (
	"fmt"

	"github.com/gregLibert/card-id/pkg/iso7816"
)

// Kind classifies a failure of the identifier read. Every kind is fatal to
// the read: no partial identifier is ever returned alongside an error.
type Kind int

const (
	KindContext Kind = iota + 1
	KindReaderEnumeration
	KindNoReader
	KindCardAbsent
	KindConnect
	KindTransmit
	KindStatusWord
	KindResponseTooShort
)

func (k Kind) String() string {
	switch k {
	case KindContext:
		return "context"
	case KindReaderEnumeration:
		return "reader enumeration"
	case KindNoReader:
		return "no reader"
	case KindCardAbsent:
		return "card absent"
	case KindConnect:
		return "connect"
	case KindTransmit:
		return "transmit"
	case KindStatusWord:
		return "status word"
	case KindResponseTooShort:
		return "response too short"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the single error type returned by this package.
// Only the fields relevant to Kind are set.
type Error struct {
	Kind   Kind
	Reader string             // KindCardAbsent, KindConnect
	Step   string             // KindTransmit, KindStatusWord, KindResponseTooShort
	Status iso7816.StatusWord // KindStatusWord
	Need   int                // KindResponseTooShort
	Got    int                // KindResponseTooShort
	Err    error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrContext           = &Error{Kind: KindContext}
	ErrReaderEnumeration = &Error{Kind: KindReaderEnumeration}
	ErrNoReader          = &Error{Kind: KindNoReader}
	ErrCardAbsent        = &Error{Kind: KindCardAbsent}
	ErrConnect           = &Error{Kind: KindConnect}
	ErrTransmit          = &Error{Kind: KindTransmit}
	ErrStatusWord        = &Error{Kind: KindStatusWord}
	ErrResponseTooShort  = &Error{Kind: KindResponseTooShort}
)

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindContext:
		msg = "failed to establish PC/SC context"
	case KindReaderEnumeration:
		msg = "failed to list readers"
	case KindNoReader:
		msg = "no smart card reader found"
		if e.Reader != "" {
			msg = fmt.Sprintf("no smart card reader matching %q", e.Reader)
		}
	case KindCardAbsent:
		msg = fmt.Sprintf("no card present in reader %q", e.Reader)
	case KindConnect:
		msg = fmt.Sprintf("failed to connect to card in reader %q", e.Reader)
	case KindTransmit:
		msg = fmt.Sprintf("failed to transmit %s", e.Step)
	case KindStatusWord:
		msg = fmt.Sprintf("%s returned %s", e.Step, e.Status.Verbose())
	case KindResponseTooShort:
		msg = fmt.Sprintf("%s response too short: need %d bytes, got %d", e.Step, e.Need, e.Got)
	default:
		msg = e.Kind.String()
	}

	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
