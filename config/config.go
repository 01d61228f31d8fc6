// Package config holds the single, explicitly-threaded configuration
// record described in spec §6/§9: every recognized external tuning knob
// lives here as a field, passed by value into the walker/CFBF/TNEF entry
// points rather than read from package-level globals.
//
// Grounded on the teacher's rewriteOptions (message.go/main.go): a flat,
// JSON-tag-compatible struct built once at startup and threaded by value
// into every call that needs it.
package config

import "github.com/mkgrgis-go/ripmime/internal/namepolicy"

// UnpackMode selects how the output sink materializes decoded bytes.
type UnpackMode string

const (
	// ModeToDirectory streams each attachment straight to a file as it's
	// decoded.
	ModeToDirectory UnpackMode = "to_directory"
	// ModeInMemory buffers every attachment in the sink; the buffered
	// attachments are not written to disk, at the end of the run or
	// otherwise.
	ModeInMemory UnpackMode = "in_memory"
	// ModeListOnly emits metadata (name, size, content-type) without
	// writing any payload bytes.
	ModeListOnly UnpackMode = "list_only"
)

// Config is spec §6's table of "recognized external tuning knobs" plus
// the handful of structural settings (output directory, rename scheme)
// a caller must also supply. The zero value has every decoder disabled;
// Default() returns the usual starting point (every decoder enabled, no
// renaming randomness, recursion bounded at defaultMaxRecursion).
type Config struct {
	// DecodeBase64, DecodeQP, DecodeUU, DecodeTNEF, DecodeOLE gate their
	// respective decoders/sub-extractors; when a decoder is disabled its
	// parts pass through raw instead.
	DecodeBase64 bool `json:"decode_base64" toml:"decode_base64"`
	DecodeQP     bool `json:"decode_qp" toml:"decode_qp"`
	DecodeUU     bool `json:"decode_uu" toml:"decode_uu"`
	DecodeTNEF   bool `json:"decode_tnef" toml:"decode_tnef"`
	DecodeOLE    bool `json:"decode_ole" toml:"decode_ole"`

	// DecodeMHT recurses into parts named "*.mht" as nested messages.
	DecodeMHT bool `json:"decode_mht" toml:"decode_mht"`

	// MaxRecursionLevel bounds nested walker entries; spec default 20.
	MaxRecursionLevel int `json:"max_recursion_level" toml:"max_recursion_level"`

	// NameByType uses the part's content-type as the synthetic-name
	// prefix instead of namepolicy.DefaultPrefix.
	NameByType bool `json:"name_by_type" toml:"name_by_type"`

	// NoNameless drops every part that was never given a real name (one
	// that would carry the nameless prefix): the walker skips it inline,
	// so it is never written to the sink.
	NoNameless bool `json:"no_nameless" toml:"no_nameless"`

	// MultipleFilenames emits aliases (via the sink's Link, or a content
	// copy) for every observed name of a part, per spec §4.1.
	MultipleFilenames bool `json:"multiple_filenames" toml:"multiple_filenames"`

	// HeaderLongSearch enables the bounded header-block retry of spec
	// §4.3 step 2 (re-parse from wherever the stream sits once a block
	// came back with zero recognized fields).
	HeaderLongSearch bool `json:"header_longsearch" toml:"header_longsearch"`
	// LongSearchLimit bounds the total number of header parses
	// HeaderLongSearch may make, the first one included (so a limit of 5
	// allows 4 retries); see SPEC_FULL.md's namesearchLimit discussion.
	LongSearchLimit int `json:"longsearch_limit" toml:"longsearch_limit"`

	// RenameMethod selects one of namepolicy's six collision schemes.
	RenameMethod namepolicy.RenameScheme `json:"rename_method" toml:"rename_method"`

	// UnpackMode selects the output sink's materialization strategy.
	UnpackMode UnpackMode `json:"unpack_mode" toml:"unpack_mode"`

	// KeepEmpty retains an attachment whose decoded body is zero-length
	// (spec §7's zero_length_part is otherwise treated as a non-error
	// drop).
	KeepEmpty bool `json:"keep_empty" toml:"keep_empty"`

	// OutputDir is the filesystem sink's destination directory (ignored
	// by the in-memory and list-only sinks).
	OutputDir string `json:"output_dir" toml:"output_dir"`

	// Verbose and Debug mirror the original's verbose/debug globals (see
	// SPEC_FULL.md's Logging section). Debug gates the walker's
	// fmt.Fprintf-to-stderr diagnostics; the CFBF and TNEF packages print
	// none, and Verbose is not read by any core package.
	Verbose bool `json:"verbose" toml:"verbose"`
	Debug   bool `json:"debug" toml:"debug"`
}

// defaultMaxRecursion is spec §6's stated default for max_recursion_level.
const defaultMaxRecursion = 20

// defaultLongSearchLimit is the bound this repo picked for the
// header_longsearch retry (see SPEC_FULL.md's SUPPLEMENTED FEATURES §1).
const defaultLongSearchLimit = 5

// Default returns a Config with every decoder enabled and the spec's
// documented defaults applied.
func Default() Config {
	return Config{
		DecodeBase64:      true,
		DecodeQP:          true,
		DecodeUU:          true,
		DecodeTNEF:        true,
		DecodeOLE:         true,
		DecodeMHT:         false,
		MaxRecursionLevel: defaultMaxRecursion,
		RenameMethod:      namepolicy.PostfixCounter,
		UnpackMode:        ModeToDirectory,
		LongSearchLimit:   defaultLongSearchLimit,
	}
}
