// Package agenterr defines the failure kinds a turn can end with.
//
// Every kind renders as a compact JSON body so the same value can be logged,
// shown to the user, or fed back to the model as a tool result.
package agenterr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is a machine-readable failure code.
type Kind string

const (
	KindProtocolOrder     Kind = "ERR_PROTOCOL_ORDER"
	KindUnknownTool       Kind = "ERR_UNKNOWN_TOOL"
	KindArgumentParse     Kind = "ERR_ARGUMENT_PARSE"
	KindPathEscape        Kind = "ERR_PATH_ESCAPE"
	KindIO                Kind = "ERR_IO"
	KindProvider          Kind = "ERR_PROVIDER"
	KindTurnDepthExceeded Kind = "ERR_TURN_DEPTH_EXCEEDED"
)

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrProtocolOrder     = &Error{Kind: KindProtocolOrder}
	ErrUnknownTool       = &Error{Kind: KindUnknownTool}
	ErrArgumentParse     = &Error{Kind: KindArgumentParse}
	ErrPathEscape        = &Error{Kind: KindPathEscape}
	ErrIO                = &Error{Kind: KindIO}
	ErrProvider          = &Error{Kind: KindProvider}
	ErrTurnDepthExceeded = &Error{Kind: KindTurnDepthExceeded}
)

// Error is a classified failure with an optional underlying cause.
type Error struct {
	Kind    Kind   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error returns a single-line JSON string. The cause, if any, is folded into
// the message so nothing is lost when only the string survives.
func (e *Error) Error() string {
	body := struct {
		Code    Kind   `json:"code"`
		Message string `json:"message"`
	}{Code: e.Kind, Message: e.Message}
	if e.Err != nil {
		if body.Message == "" {
			body.Message = e.Err.Error()
		} else {
			body.Message += ": " + e.Err.Error()
		}
	}
	b, _ := json.Marshal(body)
	return string(b)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New returns an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind. A nil err yields nil.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
