// Package mimewalk implements the recursive-descent MIME walker of spec
// §4.3: a boundary-stack-driven traversal of a (possibly deeply nested)
// multipart tree, dispatching each leaf part to the appropriate
// content-transfer decoder and, where a part's content-type calls for
// it, into the CFBF or TNEF sub-extractors.
//
// Grounded on the teacher's copyMessagePart/copyHeader/copyBody state
// machine in message.go, generalized from a pure rewrite pass (echo to
// one io.Writer) into an extraction pass (each part's decoded bytes go
// to a sink.Sink under its own name).
package mimewalk

import (
	"github.com/mkgrgis-go/ripmime/config"
	"github.com/mkgrgis-go/ripmime/internal/boundary"
	"github.com/mkgrgis-go/ripmime/internal/defect"
	"github.com/mkgrgis-go/ripmime/internal/header"
	"github.com/mkgrgis-go/ripmime/internal/namepolicy"
	"github.com/mkgrgis-go/ripmime/sink"
)

// namesearchLimit bounds the header_longsearch retry (spec §4.3 step 2;
// see SPEC_FULL.md's SUPPLEMENTED FEATURES §1 for why this repo doesn't
// just hardcode the original's default of 1). A Context built via
// NewContext takes its actual limit from Cfg.LongSearchLimit; this
// constant is only the backstop applied if a caller leaves that field
// at its zero value.
const namesearchLimit = 5

// defaultMaxRecursionBackstop mirrors config.Default()'s recursion bound,
// applied here only if a caller builds a Context from a zero-value
// Config directly (config.Load/config.Default already set this field).
const defaultMaxRecursionBackstop = 20

// Context is the message-scoped state shared across every recursive
// call of walkPart for one top-level message, per spec §5's "Shared
// resources": the boundary stack and the filename counter are the only
// state threaded across recursion, owned here rather than as package
// globals.
type Context struct {
	Cfg  config.Config
	Sink sink.Sink

	Bounds  boundary.Stack
	Counter namepolicy.Counter
	Outer   header.OuterHeader

	// Defects aggregates every part's defect.Set for the message-close
	// report spec §7 calls for.
	Defects defect.Set

	// AttachmentCount is incremented once per part actually handed to
	// the sink (spec §9's open question, resolved in SPEC_FULL.md:
	// post decode/drop-decision, in emitPart and emitNamed in leaf.go).
	AttachmentCount int

	// renameAttempts tracks the next collision-rename attempt number per
	// logical base name, scoped to the whole message.
	renameAttempts map[string]int
}

// NewContext builds a Context for one top-level message.
func NewContext(cfg config.Config, s sink.Sink) *Context {
	if cfg.LongSearchLimit <= 0 {
		cfg.LongSearchLimit = namesearchLimit
	}
	if cfg.MaxRecursionLevel <= 0 {
		cfg.MaxRecursionLevel = defaultMaxRecursionBackstop
	}
	return &Context{
		Cfg:            cfg,
		Sink:           s,
		renameAttempts: make(map[string]int),
	}
}

// nextName resolves name to one the sink will actually accept, retrying
// through the configured collision-rename scheme (spec §4.1) on a
// collision. createFn is called with each candidate; it should return
// (handle, nil) on success; every non-nil err is treated as "name taken"
// and triggers a rename attempt via namepolicy.Rename, and the last error
// is returned once 64 renames have failed. DirectorySink's Create opens
// with O_EXCL and so fails on an existing file; MemorySink and
// ListOnlySink never fail, so for them the first attempt always wins.
func (c *Context) nextName(base string, create func(name string) (sink.Handle, error)) (sink.Handle, string, error) {
	name := base
	for attempt := 0; ; attempt++ {
		h, err := create(name)
		if err == nil {
			return h, name, nil
		}
		if attempt >= 64 {
			return nil, "", err
		}
		n := c.renameAttempts[base] + 1
		c.renameAttempts[base] = n
		name = namepolicy.Rename(c.Cfg.RenameMethod, base, n)
	}
}
