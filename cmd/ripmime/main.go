package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/mkgrgis-go/ripmime/config"
	"github.com/mkgrgis-go/ripmime/internal/bytesource"
	"github.com/mkgrgis-go/ripmime/internal/mimewalk"
	"github.com/mkgrgis-go/ripmime/internal/namepolicy"
	"github.com/mkgrgis-go/ripmime/sink"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flag]... [file]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Extracts attachments and embedded bodies from an email message (or mbox) on stdin or in file.\n\n")
		flag.PrintDefaults()
	}

	cfgPath := flag.String("config", "", "Path to a TOML config file; flags below override its values")
	outputDir := flag.String("output-dir", ".", "Directory attachments are written to (to_directory mode)")
	unpackMode := flag.String("unpack-mode", string(config.ModeToDirectory), "to_directory | in_memory | list_only")
	renameMethod := flag.String("rename-method", "postfix_counter", "prefix_counter | infix_counter | postfix_counter | prefix_counter_random | infix_counter_random | postfix_counter_random")

	noBase64 := flag.Bool("no-decode-base64", false, "Disable base64 decoding; pass those parts through raw")
	noQP := flag.Bool("no-decode-qp", false, "Disable quoted-printable decoding")
	noUU := flag.Bool("no-decode-uu", false, "Disable uuencode decoding")
	noTNEF := flag.Bool("no-decode-tnef", false, "Disable TNEF sub-extraction")
	noOLE := flag.Bool("no-decode-ole", false, "Disable CFBF/OLE sub-extraction")
	decodeMHT := flag.Bool("decode-mht", false, "Recurse into .mht-named parts as nested messages")

	maxRecursion := flag.Int("max-recursion-level", 0, "Bound on nested walker entries (0 = use default)")
	nameByType := flag.Bool("name-by-type", false, "Use content-type as filename prefix for nameless parts")
	noNameless := flag.Bool("no-nameless", false, "Drop parts that never resolved to a real filename")
	multipleFilenames := flag.Bool("multiple-filenames", false, "Emit aliases for every observed name of a part")
	headerLongSearch := flag.Bool("header-longsearch", false, "Bounded retry on unrecognized-header prefixes")
	keepEmpty := flag.Bool("keep-empty", false, "Retain zero-length attachments")

	verbose := flag.Bool("verbose", false, "Log a per-message summary")
	debug := flag.Bool("debug", false, "Log per-part diagnostics")

	flag.Parse()

	log := logrus.New()
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	} else if *verbose {
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	os.Exit(run(log, runArgs{
		cfgPath:           *cfgPath,
		outputDir:         *outputDir,
		unpackMode:        *unpackMode,
		renameMethod:      *renameMethod,
		noBase64:          *noBase64,
		noQP:              *noQP,
		noUU:              *noUU,
		noTNEF:            *noTNEF,
		noOLE:             *noOLE,
		decodeMHT:         *decodeMHT,
		maxRecursion:      *maxRecursion,
		nameByType:        *nameByType,
		noNameless:        *noNameless,
		multipleFilenames: *multipleFilenames,
		headerLongSearch:  *headerLongSearch,
		keepEmpty:         *keepEmpty,
		debug:             *debug,
		verbose:           *verbose,
		inputPath:         flag.Arg(0),
	}))
}

// runArgs collects main's parsed flags so run (the testable core) never
// touches package-level flag state directly.
type runArgs struct {
	cfgPath, outputDir, unpackMode, renameMethod, inputPath string
	noBase64, noQP, noUU, noTNEF, noOLE, decodeMHT          bool
	nameByType, noNameless, multipleFilenames                bool
	headerLongSearch, keepEmpty, debug, verbose             bool
	maxRecursion                                             int
}

func run(log *logrus.Logger, a runArgs) int {
	cfg, err := buildConfig(a)
	if err != nil {
		log.WithError(err).Error("bad configuration")
		return 2
	}

	s, cleanup, err := newSink(cfg)
	if err != nil {
		log.WithError(err).Error("failed to open output sink")
		return 1
	}
	defer cleanup()

	input, err := openInput(a.inputPath)
	if err != nil {
		log.WithError(err).Error("failed to open input")
		return 1
	}
	defer input.Close()

	workDir := cfg.OutputDir
	if workDir == "" {
		workDir = "."
	}

	var (
		messages   int
		attachCnt  int
		failures   int
	)
	process := func(path string) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		ctx := mimewalk.NewContext(cfg, s)
		walkErr := ctx.WalkMessage(bytesource.New(f))
		messages++
		attachCnt += ctx.AttachmentCount
		if walkErr != nil {
			failures++
			log.WithError(walkErr).WithField("message", messages).Warn("message aborted")
		}
		log.WithFields(logrus.Fields{
			"message":     messages,
			"attachments": ctx.AttachmentCount,
			"defects":     ctx.Defects.Total(),
			"subject":     ctx.Outer.Subject,
		}).Info("message processed")
		return nil
	}

	buffered := bufio.NewReader(input)
	if err := splitMbox(buffered, workDir, process); err != nil {
		log.WithError(err).Error("failed splitting input")
		return 1
	}

	log.WithFields(logrus.Fields{
		"messages":    messages,
		"attachments": attachCnt,
		"failures":    failures,
	}).Info("run complete")

	if failures > 0 {
		return 1
	}
	return 0
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func buildConfig(a runArgs) (config.Config, error) {
	cfg := config.Default()
	if a.cfgPath != "" {
		loaded, err := config.Load(a.cfgPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if a.noBase64 {
		cfg.DecodeBase64 = false
	}
	if a.noQP {
		cfg.DecodeQP = false
	}
	if a.noUU {
		cfg.DecodeUU = false
	}
	if a.noTNEF {
		cfg.DecodeTNEF = false
	}
	if a.noOLE {
		cfg.DecodeOLE = false
	}
	if a.decodeMHT {
		cfg.DecodeMHT = true
	}
	if a.maxRecursion > 0 {
		cfg.MaxRecursionLevel = a.maxRecursion
	}
	if a.nameByType {
		cfg.NameByType = true
	}
	if a.noNameless {
		cfg.NoNameless = true
	}
	if a.multipleFilenames {
		cfg.MultipleFilenames = true
	}
	if a.headerLongSearch {
		cfg.HeaderLongSearch = true
	}
	if a.keepEmpty {
		cfg.KeepEmpty = true
	}
	cfg.Verbose = a.verbose
	cfg.Debug = a.debug
	cfg.OutputDir = a.outputDir

	if a.unpackMode != "" {
		cfg.UnpackMode = config.UnpackMode(a.unpackMode)
	}

	scheme, err := parseRenameMethod(a.renameMethod)
	if err != nil {
		return cfg, err
	}
	cfg.RenameMethod = scheme

	return cfg, nil
}

func parseRenameMethod(s string) (namepolicy.RenameScheme, error) {
	switch s {
	case "prefix_counter":
		return namepolicy.PrefixCounter, nil
	case "infix_counter":
		return namepolicy.InfixCounter, nil
	case "postfix_counter", "":
		return namepolicy.PostfixCounter, nil
	case "prefix_counter_random":
		return namepolicy.PrefixCounterRandom, nil
	case "infix_counter_random":
		return namepolicy.InfixCounterRandom, nil
	case "postfix_counter_random":
		return namepolicy.PostfixCounterRandom, nil
	default:
		return 0, fmt.Errorf("unknown rename-method %q", s)
	}
}

// newSink builds the Sink named by cfg.UnpackMode and a cleanup func
// that flushes any summary a non-filesystem sink needs printed once
// the run is done (list_only prints its collected metadata to stdout,
// since it otherwise never produces any visible output at all).
func newSink(cfg config.Config) (sink.Sink, func(), error) {
	switch cfg.UnpackMode {
	case config.ModeInMemory:
		s := sink.NewMemorySink()
		return s, func() {}, nil

	case config.ModeListOnly:
		s := sink.NewListOnlySink()
		return s, func() { printListOnly(s) }, nil

	case config.ModeToDirectory, "":
		dir := cfg.OutputDir
		if dir == "" {
			dir = "."
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, nil, err
		}
		s, err := sink.NewDirectorySink(abs)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown unpack-mode %q", cfg.UnpackMode)
	}
}

func printListOnly(s *sink.ListOnlySink) {
	var buf bytes.Buffer
	for _, m := range s.Entries {
		fmt.Fprintf(&buf, "%s\t%s\t%d\n", m.Name, m.ContentType, m.Size)
	}
	os.Stdout.Write(buf.Bytes())
}
