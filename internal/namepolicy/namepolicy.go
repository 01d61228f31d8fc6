// Package namepolicy implements the filename and path policy of spec §4.1:
// sanitization, default synthetic naming, name-by-type, and the six
// collision-rename schemes.
package namepolicy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Sanitize restricts name to printable ASCII, mapping every byte outside
// [0x20, 0x7E] to '_', as well as '/' and '\\' — unless preserveSlash is
// true (the part carries an x-mac-type/x-mac-creator pair, the Mac-resource
// convention from spec §4.1), in which case '/' is kept literal.
//
// Grounded on ripOLE/olestream-unwrap.c's OLEUNWRAP_sanitize_filename,
// which walks the name byte-by-byte replacing anything outside the
// printable-ASCII range (and non-alnum/non-dot there) with '_'.
func Sanitize(name string, preserveSlash bool) string {
	b := []byte(name)
	for i, c := range b {
		switch {
		case c == '/' && preserveSlash:
			// keep literal
		case c == '/' || c == '\\':
			b[i] = '_'
		case c < 0x20 || c > 0x7E:
			b[i] = '_'
		}
	}
	return string(b)
}

// HasMacResourceParams reports whether the supplied Content-Type parameter
// map carries the x-mac-type/x-mac-creator pair that triggers the
// slash-preserving exception.
func HasMacResourceParams(params map[string]string) bool {
	_, t := params["x-mac-type"]
	_, c := params["x-mac-creator"]
	return t && c
}

// Counter generates default synthetic names ("<prefix><N>") scoped to a
// single top-level message, per spec §4.1.
type Counter struct {
	n int
}

// Next returns the next default name using prefix ("textfile" by default,
// or the content-type string with '/' and '\\' mapped to '-' when
// name-by-type is enabled) and advances the counter.
func (c *Counter) Next(prefix string) string {
	name := fmt.Sprintf("%s%d", prefix, c.n)
	c.n++
	return name
}

// TypePrefix converts a content-type string into the name-by-type prefix
// form: '/' and '\\' mapped to '-'.
func TypePrefix(mediaType string) string {
	r := strings.NewReplacer("/", "-", "\\", "-")
	return r.Replace(mediaType)
}

// DefaultPrefix is used when name-by-type is disabled.
const DefaultPrefix = "textfile"

// RenameScheme selects one of the six collision-rename schemes from
// spec §4.1: prefix/infix/postfix position, each in a plain-counter or
// counter+random variant.
type RenameScheme int

const (
	PrefixCounter RenameScheme = iota
	InfixCounter
	PostfixCounter
	PrefixCounterRandom
	InfixCounterRandom
	PostfixCounterRandom
)

// randSource returns an unpredictable-enough string for the "+random"
// schemes. The spec explicitly says this has no cryptographic
// requirement, so a uuid's string form (this is the repo's only use of
// the uuid dependency, see DESIGN.md) is used purely as a convenient
// process-local random token, truncated for readability.
var randSource = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Rename applies scheme to name using attempt as the collision counter
// (the caller increments attempt each time the sink reports another
// collision on the same logical name).
func Rename(scheme RenameScheme, name string, attempt int) string {
	suffix := strconv.Itoa(attempt)
	if scheme == PrefixCounterRandom || scheme == InfixCounterRandom || scheme == PostfixCounterRandom {
		suffix += "-" + randSource()
	}

	base, ext := splitExt(name)
	switch scheme {
	case PrefixCounter, PrefixCounterRandom:
		return suffix + "_" + name
	case InfixCounter, InfixCounterRandom:
		if ext == "" {
			return base + "_" + suffix
		}
		return base + "_" + suffix + "." + ext
	case PostfixCounter, PostfixCounterRandom:
		return name + "_" + suffix
	default:
		return name + "_" + suffix
	}
}

// splitExt splits name into a base and extension (without the dot); ext is
// empty if name has no '.' after its first character (to avoid treating a
// leading dot as an extension marker for dotfiles).
func splitExt(name string) (base, ext string) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}

// NameStack is the per-part multiset of observed filenames described in
// spec §3/§4.1: used to emit alias names and to detect the "multiple
// names" / "multiple filenames" defects.
type NameStack struct {
	names []string
}

// Add records name as an additional observed name for the current part,
// if it isn't already present. It reports whether name was new.
func (ns *NameStack) Add(name string) bool {
	if name == "" {
		return false
	}
	for _, n := range ns.names {
		if n == name {
			return false
		}
	}
	ns.names = append(ns.names, name)
	return true
}

// Primary returns the first valid name added, or "" if none were added.
func (ns *NameStack) Primary() string {
	if len(ns.names) == 0 {
		return ""
	}
	return ns.names[0]
}

// Aliases returns every name beyond the primary one.
func (ns *NameStack) Aliases() []string {
	if len(ns.names) <= 1 {
		return nil
	}
	return ns.names[1:]
}

// Len reports how many distinct names have been observed.
func (ns *NameStack) Len() int { return len(ns.names) }
