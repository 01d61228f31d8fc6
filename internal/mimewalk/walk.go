package mimewalk

import (
	"fmt"
	"io"
	"os"

	"github.com/mkgrgis-go/ripmime/internal/boundary"
	"github.com/mkgrgis-go/ripmime/internal/bytesource"
	"github.com/mkgrgis-go/ripmime/internal/defect"
	"github.com/mkgrgis-go/ripmime/internal/header"
	"github.com/mkgrgis-go/ripmime/sink"
)

// outcome is the termination reason spec §4.3 says propagates up the
// recursion: a boundary match (with which boundary and whether it was
// the "--<s>--" terminator), end of input, or the recursion bound
// having been reached. Only eof and recursionLimit abort the enclosing
// multipart; a boundary match lets the caller continue with the next
// part.
type outcome struct {
	eof            bool
	recursionLimit bool
	boundaryMatch  string
	isTerminator   bool
}

func boundaryOutcome(match string, isTerminator bool) outcome {
	return outcome{boundaryMatch: match, isTerminator: isTerminator}
}

// WalkMessage processes one complete top-level message read from src:
// spec §4.3's walker entry point at recursion depth 0. It is also the
// entry point for each of an mbox's successive messages, which
// cmd/ripmime walks one by one, each on a fresh Context/Source pair. A
// decoded message/rfc822 part or ".mht" part is not re-entered through
// WalkMessage: followUp in leaf.go walks it with walkPart at depth+1 on
// the same Context.
func (ctx *Context) WalkMessage(src *bytesource.Source) error {
	_, err := ctx.walkPart(src, 0)
	ctx.Sink.DefectReport(toDefectEntries(ctx.Defects.Report()))
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}

// toDefectEntries converts internal/defect's Entry slice to the
// sink package's public DefectEntry, per spec §7's "reported to the
// sink on message close" requirement (sink.go's doc comment on
// DefectEntry: internal/defect stays out of every Sink implementer's
// import graph).
func toDefectEntries(entries []defect.Entry) []sink.DefectEntry {
	out := make([]sink.DefectEntry, len(entries))
	for i, e := range entries {
		out[i] = sink.DefectEntry{Kind: e.Kind.String(), Count: e.Count}
	}
	return out
}

// walkPart implements one call of spec §4.3's algorithm: parse this
// part's headers (with the header_longsearch retry), then dispatch on
// content-type to the multipart handler, the decoder (for everything
// else, including message/rfc822 — which is decoded like any other
// part and then re-entered per step 4), or bail out if depth has
// exceeded the configured recursion bound.
func (ctx *Context) walkPart(src *bytesource.Source, depth int) (outcome, error) {
	if depth > ctx.Cfg.MaxRecursionLevel {
		ctx.debugf("recursion limit %d reached at depth %d", ctx.Cfg.MaxRecursionLevel, depth)
		return outcome{recursionLimit: true}, defect.New(defect.RecursionLimitReached, "max recursion level exceeded")
	}

	rec, err := ctx.parseHeaderWithRetry(src, depth)
	if err != nil {
		return outcome{eof: true}, err
	}
	rec.Depth = depth
	ctx.Defects.Merge(&rec.Defects)

	if rec.MediaKind == header.KindMultipart && rec.Boundary != "" {
		return ctx.walkMultipart(src, depth, rec)
	}

	return ctx.decodeLeaf(src, depth, rec)
}

// parseHeaderWithRetry wraps header.Parse with spec §4.3 step 2's
// bounded "long search": when a parsed block carries zero recognized
// fields (Record.Sanity == 0) and header_longsearch is enabled, the
// bytes already read are discarded (never rewound — the stream simply
// continues from wherever it now sits) and headers are re-parsed, up
// to Cfg.LongSearchLimit attempts. This is the filter that strips
// non-RFC preambles such as qmail bounce banners.
func (ctx *Context) parseHeaderWithRetry(src *bytesource.Source, depth int) (*header.Record, error) {
	var outer *header.OuterHeader
	if depth == 0 {
		outer = &ctx.Outer
	}

	rec, err := header.Parse(src, outer)
	if err != nil {
		return rec, err
	}
	if !ctx.Cfg.HeaderLongSearch {
		return rec, nil
	}

	limit := ctx.Cfg.LongSearchLimit
	if limit <= 0 {
		limit = namesearchLimit
	}
	for attempt := 1; rec.Sanity == 0 && attempt < limit; attempt++ {
		next, err := header.Parse(src, outer)
		if err != nil {
			return next, err
		}
		rec = next
	}
	return rec, nil
}

// walkMultipart implements spec §4.3's per-multipart state machine:
// Preamble (discarded bytes before the first boundary), Part (one
// child, dispatched back through walkPart), Epilogue (discarded bytes
// after the closing terminator), Closed. rec.Boundary is pushed onto
// ctx.Bounds for the duration; per boundary.Stack's contract, each
// matched Separator pops the entry, so it is re-pushed before scanning
// for the next part and left unpushed once the Terminator is seen.
func (ctx *Context) walkMultipart(src *bytesource.Source, depth int, rec *header.Record) (outcome, error) {
	b := rec.Boundary
	ctx.Bounds.Push(b)

	// Preamble: discard lines until the first boundary occurrence.
	for {
		line, err := src.ReadLine()
		if err != nil {
			// The boundary was declared but never appeared at all:
			// spec §8's "boundary declared but never opened" scenario.
			ctx.registerBoundaryCrash(rec, fmt.Sprintf("multipart %q: eof in preamble, boundary never seen", b))
			return outcome{eof: true}, nil
		}
		kind, matched := ctx.Bounds.Match(bytesource.TrimCRLF(line))
		if kind == boundary.NoMatch {
			continue
		}
		if matched != b {
			// Some ancestor boundary showed up before ours ever did;
			// ours was auto-popped along with it. Propagate the match
			// up unchanged.
			return boundaryOutcome(matched, kind == boundary.Terminator), nil
		}
		if kind == boundary.Terminator {
			// Boundary forgery (spec §8 scenario 6): the terminator
			// "--<s>--" was matched with no separator "--<s>" ever
			// seen opening a part.
			ctx.registerBoundaryCrash(rec, fmt.Sprintf("multipart %q: terminator seen with no separator", b))
			return ctx.multipartEpilogue(src, b)
		}
		ctx.Bounds.Push(b) // Match popped it; re-push for the first part
		break              // Separator: first part begins on the next line.
	}

	for {
		o, err := ctx.walkPart(src, depth+1)
		if err != nil && !defect.Is(err, defect.RecursionLimitReached) {
			return o, err
		}
		if o.recursionLimit {
			return o, err
		}
		if o.eof {
			ctx.debugf("multipart %q: eof without terminator", b)
			return o, nil
		}
		if o.boundaryMatch != b {
			// Our own boundary was auto-popped by a shallower match;
			// this multipart ends here, abruptly.
			return o, nil
		}
		if o.isTerminator {
			return ctx.multipartEpilogue(src, b)
		}
		ctx.Bounds.Push(b) // more parts may follow
	}
}

// multipartEpilogue discards bytes after the closing "--<b>--" up to
// EOF or the next line that matches a still-active ancestor boundary
// (pushed back for that ancestor's own loop to consume).
func (ctx *Context) multipartEpilogue(src *bytesource.Source, b string) (outcome, error) {
	for {
		line, err := src.ReadLine()
		if err != nil {
			return outcome{eof: true}, nil
		}
		trimmed := bytesource.TrimCRLF(line)
		if kind, matched := ctx.Bounds.Match(trimmed); kind != boundary.NoMatch {
			return boundaryOutcome(matched, kind == boundary.Terminator), nil
		}
	}
}

// registerBoundaryCrash logs spec §7's boundary_crash condition (an
// informational *defect.CoreError built the same way as
// decode.BoundaryCrashError, printed as a debug line and never treated
// as fatal) and emits the
// zero-length attachment spec §8 scenario 6 ("boundary forgery") calls
// for, unconditionally (unlike the ordinary zero_length_part case,
// which is gated behind the keep-empty knob in decodeLeaf).
func (ctx *Context) registerBoundaryCrash(rec *header.Record, reason string) {
	ctx.debugf("%v", defect.New(defect.BoundaryCrash, reason))
	ctx.emitPart(rec, nil)
}

func (ctx *Context) debugf(format string, args ...interface{}) {
	if ctx.Cfg.Debug {
		fmt.Fprintf(os.Stderr, "mimewalk: "+format+"\n", args...)
	}
}
