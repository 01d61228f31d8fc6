package mimewalk

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/mkgrgis-go/ripmime/internal/bytesource"
	"github.com/mkgrgis-go/ripmime/internal/cfb"
	"github.com/mkgrgis-go/ripmime/internal/decode"
	"github.com/mkgrgis-go/ripmime/internal/defect"
	"github.com/mkgrgis-go/ripmime/internal/header"
	"github.com/mkgrgis-go/ripmime/internal/namepolicy"
	"github.com/mkgrgis-go/ripmime/internal/tnef"
	"github.com/mkgrgis-go/ripmime/sink"
)

// decodeLeaf implements spec §4.3 steps 3-5 for a non-multipart part:
// run the content-transfer decoder named by rec.CTE into an in-memory
// buffer (needed because every post-decode check — mht/rfc822
// re-entry, TNEF, CFBF, embedded uuencode — wants a random-access view
// of the whole part, per spec §5's "downstream processor requires a
// random-access view" exception to the no-full-buffering rule), then
// dispatch on the decoded bytes.
func (ctx *Context) decodeLeaf(src *bytesource.Source, depth int, rec *header.Record) (outcome, error) {
	var buf bytes.Buffer
	result, uuName, err := ctx.runDecoder(src, rec, &buf)
	if err != nil {
		return outcome{eof: true}, err
	}

	if result.Broken {
		ctx.debugf("part at depth %d: decoder reported a broken input stream", depth)
	}

	o := leafOutcome(result)

	if uuName != "" {
		rec.Filename = uuName // spec §9's uuencoded-name clobbering
	}

	if buf.Len() > 0 || ctx.Cfg.KeepEmpty {
		ctx.emitPart(rec, buf.Bytes())
	}

	if buf.Len() > 0 {
		ctx.followUp(rec, depth, buf.Bytes())
	}

	return o, nil
}

// leafOutcome converts a decode.Result into the outcome type walkPart's
// multipart caller understands.
func leafOutcome(r decode.Result) outcome {
	if r.BoundaryMatch != "" {
		return boundaryOutcome(r.BoundaryMatch, r.IsTerminator)
	}
	return outcome{eof: true}
}

// runDecoder dispatches rec.CTE to the matching internal/decode
// function, falling back to raw passthrough when the matching decoder
// is disabled in config (per config.Config's doc: "when a decoder is
// disabled its parts pass through raw instead").
func (ctx *Context) runDecoder(src *bytesource.Source, rec *header.Record, w *bytes.Buffer) (decode.Result, string, error) {
	switch rec.CTE {
	case header.CTEBase64:
		if !ctx.Cfg.DecodeBase64 {
			r, err := decode.DecodePassthrough(src, w, &ctx.Bounds, false)
			return r, "", err
		}
		r, err := decode.DecodeBase64(src, w, &ctx.Bounds)
		return r, "", err

	case header.CTEQuotedPrintable:
		if !ctx.Cfg.DecodeQP {
			r, err := decode.DecodePassthrough(src, w, &ctx.Bounds, false)
			return r, "", err
		}
		r, err := decode.DecodeQuotedPrintable(src, w, &ctx.Bounds)
		return r, "", err

	case header.CTEUUEncode:
		if !ctx.Cfg.DecodeUU {
			r, err := decode.DecodePassthrough(src, w, &ctx.Bounds, false)
			return r, "", err
		}
		return decode.DecodeUUEncode(src, w, &ctx.Bounds)

	case header.CTEBinary:
		r, err := decode.DecodePassthrough(src, w, &ctx.Bounds, true)
		return r, "", err

	default: // CTEUnspecified, CTE7Bit, CTE8Bit, CTEUnknown
		r, err := decode.DecodePassthrough(src, w, &ctx.Bounds, false)
		return r, "", err
	}
}

// partNameStack collects every distinct name a part declares across its
// name=, filename=, and Content-Location: facets, per spec §4.1's
// "multiple-name exploit": all three are retained, the primary (first
// valid, filename= before name= before Content-Location:, matching
// header.FallbackFilename's priority) becomes the physical output and
// the rest become alias names. Registers defect.MultipleFilenames on ctx
// when more than one distinct name was observed (rec.Defects has
// already been merged into ctx.Defects by the time emitPart runs, so
// this can't register through rec.Defects and reach the message-close
// report - it must go straight to ctx.Defects).
func (ctx *Context) partNameStack(rec *header.Record) namepolicy.NameStack {
	var ns namepolicy.NameStack
	ns.Add(rec.Filename)
	ns.Add(rec.Name)
	if loc := contentLocationName(rec.ContentLoc); loc != "" {
		ns.Add(loc)
	}
	if ns.Len() > 1 {
		ctx.Defects.Add(defect.MultipleFilenames)
	}
	return ns
}

// contentLocationName extracts the trailing path segment of a
// Content-Location value for comparison against name=/filename=, since
// Content-Location is a URI while the other two facets are bare names.
func contentLocationName(loc string) string {
	if loc == "" {
		return ""
	}
	return path.Base(loc)
}

// emitPart resolves rec's final name and hands its decoded bytes to the
// sink. A part whose name never resolved to anything but the synthetic
// default is dropped entirely when Cfg.NoNameless is set, matching spec
// §4.1's "no_nameless" knob (applied here inline rather than as a
// separate cleanup pass over the sink's already-written output).
func (ctx *Context) emitPart(rec *header.Record, data []byte) {
	ns := ctx.partNameStack(rec)
	real := ns.Primary()
	name := real
	if name == "" {
		prefix := namepolicy.DefaultPrefix
		if ctx.Cfg.NameByType {
			mt := rec.ContentType
			if mt == "" {
				mt = "application-octet-stream"
			}
			prefix = namepolicy.TypePrefix(mt)
		}
		name = ctx.Counter.Next(prefix)
	}
	if real == "" && ctx.Cfg.NoNameless {
		return
	}

	preserveSlash := namepolicy.HasMacResourceParams(rec.ContentParams)
	name = namepolicy.Sanitize(name, preserveSlash)

	h, finalName, err := ctx.nextName(name, ctx.Sink.Create)
	if err != nil {
		ctx.debugf("sink.Create(%q): %v", name, err)
		return
	}
	if _, err := ctx.Sink.Write(h, data); err != nil {
		ctx.debugf("sink.Write(%q): %v", finalName, err)
	}
	if err := ctx.Sink.Close(h, sink.Meta{Name: finalName, ContentType: rec.ContentType, Size: int64(len(data))}); err != nil {
		ctx.debugf("sink.Close(%q): %v", finalName, err)
	}
	ctx.AttachmentCount++

	if ctx.Cfg.MultipleFilenames {
		for _, alt := range ns.Aliases() {
			altSan := namepolicy.Sanitize(alt, preserveSlash)
			if altSan != "" && altSan != finalName {
				if err := ctx.Sink.Link(finalName, altSan); err != nil {
					ctx.debugf("sink.Link(%q, %q): %v", finalName, altSan, err)
				}
			}
		}
	}
}

// emitNamed is emitPart's counterpart for attachments discovered by a
// sub-extractor (uuencode-in-text, CFBF, TNEF) that already know their
// own name and don't go through FallbackFilename/the synthetic counter.
func (ctx *Context) emitNamed(name, contentType string, data []byte) {
	name = namepolicy.Sanitize(name, false)
	if name == "" {
		name = ctx.Counter.Next(namepolicy.DefaultPrefix)
	}
	h, finalName, err := ctx.nextName(name, ctx.Sink.Create)
	if err != nil {
		ctx.debugf("sink.Create(%q): %v", name, err)
		return
	}
	if _, err := ctx.Sink.Write(h, data); err != nil {
		ctx.debugf("sink.Write(%q): %v", finalName, err)
	}
	if err := ctx.Sink.Close(h, sink.Meta{Name: finalName, ContentType: contentType, Size: int64(len(data))}); err != nil {
		ctx.debugf("sink.Close(%q): %v", finalName, err)
	}
	ctx.AttachmentCount++
}

// followUp implements spec §4.3 steps 4-5: after a decoder returns,
// inspect the produced bytes for reasons to recurse or sub-extract.
func (ctx *Context) followUp(rec *header.Record, depth int, data []byte) {
	name := strings.ToLower(header.FallbackFilename(rec))

	isMessage := rec.MediaKind == header.KindMessageRFC822
	isMHT := ctx.Cfg.DecodeMHT && strings.HasSuffix(name, ".mht")
	if isMessage || isMHT {
		nested := bytesource.New(bytes.NewReader(data))
		if _, err := ctx.walkPart(nested, depth+1); err != nil {
			ctx.debugf("nested message re-entry: %v", err)
		}
		return // a recognized container doesn't also get TNEF/CFBF-sniffed
	}

	if rec.ContentType == "application/ms-tnef" && ctx.Cfg.DecodeTNEF && tnef.HasSignature(data) {
		ctx.extractTNEF(data)
		return
	}

	if ctx.Cfg.DecodeOLE && cfb.HasSignature(data) {
		ctx.extractCFB(data)
		return
	}

	if rec.CTE != header.CTEUUEncode {
		ctx.scanEmbeddedUUEncode(data)
	}
}

func (ctx *Context) extractTNEF(data []byte) {
	res, err := tnef.Extract(data)
	if err != nil {
		ctx.debugf("tnef.Extract: %v", err)
		return
	}
	ctx.Outer.SetTNEFIdentity(res.Metadata["owner"], res.Metadata["sent_for"], res.Metadata["delegate"])
	for _, a := range res.Attachments {
		ctx.emitNamed(a.Name, "application/octet-stream", a.Data)
	}
	if len(res.RTFBody) > 0 {
		name := fmt.Sprintf("%d.rtf", ctx.AttachmentCount)
		ctx.emitNamed(name, "application/rtf", res.RTFBody)
	}
}

func (ctx *Context) extractCFB(data []byte) {
	files, err := cfb.Extract(data)
	if err != nil {
		ctx.debugf("cfb.Extract: %v", err)
		return
	}
	for _, f := range files {
		ctx.emitNamed(f.Name, "application/octet-stream", f.Data)
	}
}

func (ctx *Context) scanEmbeddedUUEncode(data []byte) {
	_ = decode.ScanEmbeddedUUEncode(data, func(name string, decoded []byte) error {
		ctx.emitNamed(name, "application/octet-stream", decoded)
		return nil
	})
}
