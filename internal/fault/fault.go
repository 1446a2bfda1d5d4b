// Package fault defines the failure taxonomy shared by every stage of the
// image streaming pipeline. Callers branch on Kind rather than on error text.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	Unexpected Kind = iota
	ImageNotFound
	Decode
	Encode
	Write
	ChannelOpen
	ChannelIO
	IncompleteTransfer
)

var kindNames = map[Kind]string{
	Unexpected:         "unexpected",
	ImageNotFound:      "image_not_found",
	Decode:             "decode",
	Encode:             "encode",
	Write:              "write",
	ChannelOpen:        "channel_open",
	ChannelIO:          "channel_io",
	IncompleteTransfer: "incomplete_transfer",
}

// String returns the snake_case token used in logs and the run journal.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified pipeline failure. Path is set for file errors and
// Expected/Actual for length mismatches.
type Error struct {
	Kind     Kind
	Op       string
	Path     string
	Expected int
	Actual   int
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case IncompleteTransfer:
		return fmt.Sprintf("%s: incomplete transfer: expected %d bytes, received %d", e.Op, e.Expected, e.Actual)
	case ImageNotFound:
		if e.Err != nil {
			return fmt.Sprintf("%s: image not found at %s: %v", e.Op, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: image not found at %s", e.Op, e.Path)
	}

	msg := e.Op + ": " + e.Kind.String()
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind alone, so the package-level sentinels
// below can be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUnexpected         = &Error{Kind: Unexpected}
	ErrImageNotFound      = &Error{Kind: ImageNotFound}
	ErrDecode             = &Error{Kind: Decode}
	ErrEncode             = &Error{Kind: Encode}
	ErrWrite              = &Error{Kind: Write}
	ErrChannelOpen        = &Error{Kind: ChannelOpen}
	ErrChannelIO          = &Error{Kind: ChannelIO}
	ErrIncompleteTransfer = &Error{Kind: IncompleteTransfer}
)

// New returns a classified error wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithPath returns a classified file error.
func WithPath(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Incomplete reports a received stream whose length differs from the
// expected frame size.
func Incomplete(op string, expected, actual int) *Error {
	return &Error{Kind: IncompleteTransfer, Op: op, Expected: expected, Actual: actual}
}

// KindOf returns the Kind of the first *Error in err's chain, or Unexpected
// when err is not classified. KindOf(nil) is Unexpected; check err first.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unexpected
}

// Classify returns err unchanged if it already carries a Kind, otherwise it
// wraps it as Unexpected under op.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return New(Unexpected, op, err)
}
