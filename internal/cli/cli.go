// Package cli is the cssdoodle command: it compiles doodle files, and the
// doodles embedded in HTML and JS files, to CSS, JSON or HTML pages.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"bennypowers.dev/cssdoodle/internal/composer"
	"bennypowers.dev/cssdoodle/internal/config"
	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/internal/source"
	"bennypowers.dev/cssdoodle/internal/tokens"
	"bennypowers.dev/cssdoodle/internal/version"
)

// Program is the command name.
const Program = "cssdoodle"

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

type options struct {
	grid         string
	seed         string
	experimental bool
	format       string
	configPath   string
	tokens       string
	prefix       string
	lang         string
	out          string
	verbose      bool
	quiet        bool
	version      bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	o := &options{}
	fs := flag.NewFlagSet(Program, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.grid, "grid", "", "grid size for doodles that declare none, e.g. 5 or 8x4")
	fs.StringVar(&o.seed, "seed", "", "seed for reproducible random values")
	fs.BoolVar(&o.experimental, "experimental", false, "raise the grid size limit")
	fs.StringVar(&o.format, "format", "", "output format: "+strings.Join(config.Formats, ", "))
	fs.StringVar(&o.configPath, "config", "", "config file (default: discovered from the working directory)")
	fs.StringVar(&o.tokens, "tokens", "", "comma-separated design token files")
	fs.StringVar(&o.prefix, "prefix", "", "custom property prefix for tokens")
	fs.StringVar(&o.lang, "lang", "cssdoodle", "language of standard input: cssdoodle, html, javascript or typescript")
	fs.StringVar(&o.out, "o", "", "output directory (default: standard output)")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
	fs.BoolVar(&o.quiet, "q", false, "log errors only")
	fs.BoolVar(&o.version, "version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] [file|glob|-]...\n\n", Program)
		fmt.Fprintf(stderr, "Without files, compiles the files the config includes.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return o, fs.Args(), nil
}

// overrides are the config values set by flags.
func (o *options) overrides() config.Config {
	c := config.Config{
		Grid:         o.grid,
		Seed:         o.seed,
		Experimental: o.experimental,
		Format:       o.format,
		Prefix:       o.prefix,
		OutDir:       o.out,
	}
	for _, path := range strings.Split(o.tokens, ",") {
		if path = strings.TrimSpace(path); path != "" {
			c.Tokens = append(c.Tokens, config.TokenFile{Path: path})
		}
	}
	return c
}

func (o *options) loadConfig() (config.Config, error) {
	var cfg config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return cfg, err
	}
	// Flag paths are relative to the working directory.
	over := o.overrides()
	for i, tf := range over.Tokens {
		if abs, err := filepath.Abs(tf.Path); err == nil {
			over.Tokens[i].Path = abs
		}
	}
	if over.OutDir != "" {
		over.OutDir, _ = filepath.Abs(over.OutDir)
	}
	cfg = cfg.Merge(over)
	return cfg, cfg.Validate()
}

// Run runs the command and returns its exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	o, inputs, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK
	}
	if err != nil {
		return ExitUsage
	}
	if o.version {
		fmt.Fprintln(stdout, version.Banner(Program))
		return ExitOK
	}

	log.SetOutput(stderr)
	switch {
	case o.verbose:
		log.SetLevel(log.LevelDebug)
	case o.quiet:
		log.SetLevel(log.LevelError)
	default:
		log.SetLevel(log.LevelWarn)
	}

	cfg, err := o.loadConfig()
	if err != nil {
		log.Error("%v", err)
		return ExitUsage
	}

	manager := tokens.NewManager()
	if err := manager.LoadConfig(cfg); err != nil {
		log.Error("%v", err)
		return ExitFailure
	}

	files, err := expand(inputs, cfg)
	if err != nil {
		log.Error("%v", err)
		return ExitUsage
	}
	if len(files) == 0 {
		log.Error("no input files")
		return ExitUsage
	}

	b := &build{
		compiler:  composer.New(),
		cfg:       cfg,
		variables: manager.Variables(),
		stderr:    stderr,
	}
	code := ExitOK
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			log.Error("%v", err)
			return ExitFailure
		}
		if err := b.file(ctx, file, o.lang, stdin); err != nil {
			log.Error("%v", err)
			code = ExitFailure
		}
	}
	if err := b.write(stdout); err != nil {
		log.Error("%v", err)
		return ExitFailure
	}
	return code
}

// expand resolves glob arguments. Without arguments, the config include
// patterns select the files.
func expand(inputs []string, cfg config.Config) ([]string, error) {
	if len(inputs) == 0 {
		return cfg.Files()
	}
	var files []string
	for _, in := range inputs {
		if in == "-" || !strings.ContainsAny(in, "*?[{") {
			files = append(files, in)
			continue
		}
		matches, err := doublestar.FilepathGlob(in, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", in, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", in)
		}
		files = append(files, matches...)
	}
	return files, nil
}

// output is one compiled doodle.
type output struct {
	File   string           `json:"file"`
	Index  int              `json:"index"`
	Name   string           `json:"-"`
	Text   string           `json:"-"`
	Result *composer.Result `json:"result"`
}

type build struct {
	compiler  *composer.Compiler
	cfg       config.Config
	variables map[string]string
	stderr    io.Writer
	outputs   []output
}

func (b *build) file(ctx context.Context, path, stdinLang string, stdin io.Reader) error {
	var data []byte
	var err error
	lang := stdinLang
	if path == "-" {
		data, err = io.ReadAll(stdin)
		path = "<stdin>"
	} else {
		lang = source.LanguageForPath(path)
		if lang == "" {
			return fmt.Errorf("%s: unsupported file type", path)
		}
		data, err = os.ReadFile(path) //nolint:gosec // G304: paths come from the command line
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	doodles := source.Extract(string(data), lang)
	if len(doodles) == 0 {
		log.Warn("%s: no doodles found", path)
		return nil
	}
	for i, d := range doodles {
		if err := b.doodle(ctx, path, i, len(doodles), d); err != nil {
			return err
		}
	}
	return nil
}

func (b *build) options(d source.Doodle) composer.Options {
	opts := composer.Options{
		Grid:         b.cfg.Grid,
		Seed:         b.cfg.Seed,
		Experimental: b.cfg.Experimental || d.Experimental(),
		Variables:    b.variables,
	}
	if g := d.Grid(); g != "" {
		opts.Grid = g
	}
	if s := d.Seed(); s != "" {
		opts.Seed = s
	}
	return opts
}

func (b *build) doodle(ctx context.Context, path string, index, count int, d source.Doodle) error {
	opts := b.options(d)
	res, err := b.compiler.Compile(ctx, d.Source, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, diag := range res.Diagnostics {
		line, col := d.Position(uint(diag.Pos.Line), uint(diag.Pos.Column))
		fmt.Fprintf(b.stderr, "%s:%d:%d: %s\n", path, line+1, col+1, diag.Message)
	}

	out := output{File: path, Index: index, Result: res, Name: outputName(path, index, count, b.cfg.Format)}
	switch b.cfg.Format {
	case "html":
		out.Text, err = b.compiler.Page(ctx, res, opts)
	case "json":
	default:
		out.Text, err = b.compiler.Resolve(ctx, res, opts)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	b.outputs = append(b.outputs, out)
	return nil
}

// outputName is the file an output is written to in the output
// directory: the input name with the format extension, numbered when the
// input holds several doodles.
func outputName(path string, index, count int, format string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if base == "<stdin>" {
		base = "stdin"
	}
	if count > 1 {
		base += "-" + strconv.Itoa(index+1)
	}
	if format == "" {
		format = "css"
	}
	return base + "." + format
}

func (b *build) write(stdout io.Writer) error {
	if b.cfg.OutDir != "" {
		return b.writeDir(b.cfg.Resolve(b.cfg.OutDir))
	}
	if b.cfg.Format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(b.outputs)
	}
	for i, out := range b.outputs {
		if b.cfg.Format != "html" && len(b.outputs) > 1 {
			fmt.Fprintf(stdout, "/* %s #%d */\n", out.File, out.Index+1)
		}
		if _, err := io.WriteString(stdout, out.Text); err != nil {
			return err
		}
		if i < len(b.outputs)-1 || !strings.HasSuffix(out.Text, "\n") {
			fmt.Fprintln(stdout)
		}
	}
	return nil
}

func (b *build) writeDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for _, out := range b.outputs {
		data := []byte(out.Text)
		if b.cfg.Format == "json" {
			var err error
			if data, err = json.MarshalIndent(out.Result, "", "  "); err != nil {
				return fmt.Errorf("failed to encode %s: %w", out.Name, err)
			}
		}
		path := filepath.Join(dir, out.Name)
		if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: generated output is public
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Info("Wrote %s", path)
	}
	return nil
}
