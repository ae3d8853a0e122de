// Package diagnostic compiles the doodles of a document and reports the
// problems found in their sources and in the CSS they generate.
package diagnostic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bennypowers.dev/cssdoodle/internal/composer"
	"bennypowers.dev/cssdoodle/internal/parser/css"
	"bennypowers.dev/cssdoodle/lsp/helpers"
	"bennypowers.dev/cssdoodle/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Source labels the diagnostics of this server.
const Source = "cssdoodle"

// defaultSeed keeps diagnostics stable between edits for doodles
// without a seed.
const defaultSeed = "cssdoodle-language-server"

const compileTimeout = 5 * time.Second

// hostPrefix marks custom properties the doodle host provides.
const hostPrefix = "--cssd-"

// Options are the compile options for a doodle of the workspace.
func Options(ctx types.ServerContext, s helpers.Span) composer.Options {
	cfg := ctx.Config()
	d := s.Doodle
	opts := composer.Options{
		Grid:         cfg.Grid,
		Seed:         cfg.Seed,
		Experimental: cfg.Experimental || d.Experimental(),
		Variables:    ctx.Variables(),
	}
	if g := d.Grid(); g != "" {
		opts.Grid = g
	}
	if seed := d.Seed(); seed != "" {
		opts.Seed = seed
	}
	if opts.Seed == "" {
		opts.Seed = defaultSeed
	}
	return opts
}

// GetDiagnostics returns the diagnostics of a document.
func GetDiagnostics(ctx types.ServerContext, uri string) ([]protocol.Diagnostic, error) {
	doc := ctx.Document(uri)
	if doc == nil {
		return nil, nil
	}
	content := doc.Content()
	diagnostics := []protocol.Diagnostic{}

	for _, span := range helpers.Spans(doc) {
		opts := Options(ctx, span)
		compileCtx, cancel := context.WithTimeout(context.Background(), compileTimeout)
		res, err := ctx.Compiler().Compile(compileCtx, span.Doodle.Source, opts)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to compile doodle in %s: %w", uri, err)
		}

		for _, d := range res.Diagnostics {
			start := span.Offset(d.Pos.Offset)
			_, end := helpers.WordAt(content, start)
			diagnostics = append(diagnostics, diagnostic(
				helpers.Range(content, start, max(end, start)),
				protocol.DiagnosticSeverityError,
				d.Message,
			))
		}

		generated, err := generatedProblems(res.Styles.All, opts.Variables)
		if err != nil {
			return nil, err
		}
		at := helpers.Range(content, span.Start, span.Start)
		for _, g := range generated {
			diagnostics = append(diagnostics, diagnostic(at, g.severity, g.message))
		}
	}
	return diagnostics, nil
}

type problem struct {
	severity protocol.DiagnosticSeverity
	message  string
}

// generatedProblems inspects compiled CSS: syntax the grammar had to
// recover from, and var() references nothing defines.
func generatedProblems(styles string, variables map[string]string) ([]problem, error) {
	report, err := css.Inspect(styles)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect generated CSS: %w", err)
	}
	var out []problem
	seen := map[string]bool{}
	for _, p := range report.Problems {
		msg := "generated CSS: " + p.Message
		if !seen[msg] {
			seen[msg] = true
			out = append(out, problem{protocol.DiagnosticSeverityWarning, msg})
		}
	}
	known := func(name string) bool {
		_, ok := variables[name]
		return ok || strings.HasPrefix(name, hostPrefix)
	}
	for _, vc := range report.Undefined(known) {
		msg := vc.Name + " is not defined by the doodle or the design tokens"
		if !seen[msg] {
			seen[msg] = true
			out = append(out, problem{protocol.DiagnosticSeverityInformation, msg})
		}
	}
	return out, nil
}

func diagnostic(r protocol.Range, severity protocol.DiagnosticSeverity, message string) protocol.Diagnostic {
	source := Source
	return protocol.Diagnostic{
		Range:    r,
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}
