package wire

// ErrorKind is the numeric error taxonomy clients match on. The values are
// load-bearing protocol constants — never renumber an existing one.
type ErrorKind int

const (
	ErrUnexpectedCompilerError ErrorKind = 101
	ErrAnalyzerInitializing    ErrorKind = 102
	ErrBuildingProject         ErrorKind = 103
	ErrBuildComplete           ErrorKind = 104
	ErrMisc                    ErrorKind = 105

	ErrDebuggerException ErrorKind = 200
	ErrRPCException      ErrorKind = 201
	ErrMalformedRPC      ErrorKind = 202
	ErrUnrecognizedForm  ErrorKind = 203
	ErrUnrecognizedRPC   ErrorKind = 204
	ErrBuilderException  ErrorKind = 205
	ErrPeekUndoFailed    ErrorKind = 206
	ErrExecUndoFailed    ErrorKind = 207
	ErrFormatFailed      ErrorKind = 208
	ErrAnalyzerNotReady  ErrorKind = 209
	ErrAnalyzerException ErrorKind = 210
	ErrFileNotFound      ErrorKind = 211
	ErrIndexerException  ErrorKind = 212
)

// Request is a parsed `(:swank-rpc form call-id)` message.
type Request struct {
	Form   List
	CallID int64
}

// ParseRequest validates and extracts a Request from a raw parsed Value.
func ParseRequest(v interface{}) (*Request, error) {
	l, ok := v.(List)
	if !ok || len(l) != 3 {
		return nil, errMalformed("expected (:swank-rpc form call-id)")
	}
	tag, ok := l.Keyword(0)
	if !ok || tag != "swank-rpc" {
		return nil, errMalformed("missing :swank-rpc tag")
	}
	form, ok := l.Get(1).(List)
	if !ok {
		return nil, errMalformed("form is not a list")
	}
	callID, ok := l.Int(2)
	if !ok {
		return nil, errMalformed("call-id is not an integer")
	}
	return &Request{Form: form, CallID: callID}, nil
}

// OKReply builds `(:return (:ok value) call-id)`.
func OKReply(value interface{}, callID int64) List {
	return List{Keyword("return"), List{Keyword("ok"), value}, callID}
}

// AbortReply builds `(:return (:abort code detail) call-id)`.
func AbortReply(kind ErrorKind, detail string, callID int64) List {
	return List{Keyword("return"), List{Keyword("abort"), int64(kind), detail}, callID}
}

// Event builds `(event-tag payload...)` — no call-id.
func Event(tag string, payload ...interface{}) List {
	l := make(List, 0, len(payload)+1)
	l = append(l, Keyword(tag))
	l = append(l, payload...)
	return l
}

type malformedError struct{ msg string }

func (e *malformedError) Error() string { return e.msg }

func errMalformed(msg string) error { return &malformedError{msg: msg} }

// IsMalformed reports whether err came from ParseRequest rejecting a frame —
// callers use this to pick ErrMalformedRPC vs ErrUnrecognizedForm.
func IsMalformed(err error) bool {
	_, ok := err.(*malformedError)
	return ok
}
