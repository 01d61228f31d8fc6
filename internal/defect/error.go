package defect

// ErrorKind identifies one of the closed set of fatal error conditions a
// subsystem can return. See spec §7.
type ErrorKind int

const (
	InputExhausted ErrorKind = iota
	RecursionLimitReached
	DecoderInputStreamBroken
	BoundaryCrash
	ZeroLengthPart
	InsaneCFBFHeader
	CycleDetected
	MemoryBoundExceeded
	SinkWriteFailed
	Cancelled
)

var errorKindNames = map[ErrorKind]string{
	InputExhausted:           "input_exhausted",
	RecursionLimitReached:    "recursion_limit_reached",
	DecoderInputStreamBroken: "decoder_input_stream_broken",
	BoundaryCrash:            "boundary_crash",
	ZeroLengthPart:           "zero_length_part",
	InsaneCFBFHeader:         "insane_cfbf_header",
	CycleDetected:            "cycle_detected",
	MemoryBoundExceeded:      "memory_bound_exceeded",
	SinkWriteFailed:          "sink_write_failed",
	Cancelled:                "cancelled",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return "unknown_error_kind"
}

// CoreError is the error type every subsystem in this module returns for
// conditions enumerated in spec §7. It is never used to wrap a panic: all
// code paths that can hit one of these conditions return a *CoreError
// explicitly.
type CoreError struct {
	Kind ErrorKind
	Msg  string
}

func (e *CoreError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

// New builds a *CoreError for the given kind and message.
func New(kind ErrorKind, msg string) *CoreError {
	return &CoreError{Kind: kind, Msg: msg}
}

// Is reports whether err is a *CoreError of the given kind, mirroring the
// teacher's `err.(*msgError)` type-assertion idiom but closed over a kind.
func Is(err error, kind ErrorKind) bool {
	ce, ok := err.(*CoreError)
	return ok && ce.Kind == kind
}
