package composer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"bennypowers.dev/cssdoodle/internal/grid"
	"bennypowers.dev/cssdoodle/internal/svg"
)

// maxEmbedDepth bounds doodles nested in doodles.
const maxEmbedDepth = 4

// Resolve returns the complete stylesheet of res with its placeholders
// replaced: nested doodles become SVG images, shaders and patterns
// become the custom properties the host fills in.
func (cp *Compiler) Resolve(ctx context.Context, res *Result, opts Options) (string, error) {
	return cp.resolve(ctx, res, opts, BasicStyles(res.Grid)+res.Styles.All, 0)
}

func (cp *Compiler) resolve(ctx context.Context, res *Result, opts Options, css string, depth int) (string, error) {
	for _, id := range res.placeholders() {
		token := "${" + id + "}"
		if !strings.Contains(css, token) {
			continue
		}
		target := "var(--" + id + ")"
		if d, ok := res.Doodles[id]; ok {
			if depth >= maxEmbedDepth {
				target = "none"
			} else {
				img, err := cp.image(ctx, d, opts, depth+1)
				if err != nil {
					return "", fmt.Errorf("embed %s: %w", id, err)
				}
				target = "url(" + img + ")"
			}
		}
		css = strings.ReplaceAll(css, token, target)
	}
	return css, nil
}

// image compiles a nested doodle into an SVG data URL.
func (cp *Compiler) image(ctx context.Context, d Doodle, opts Options, depth int) (string, error) {
	nested := opts
	nested.Grid = ""
	nested.Random = nil
	res, err := cp.Compile(ctx, ":doodle {width:100%;height:100%}"+d.Source, nested)
	if err != nil {
		return "", err
	}
	css, err := cp.resolve(ctx, res, nested, BasicStyles(res.Grid)+res.Styles.All, depth)
	if err != nil {
		return "", err
	}

	attrs := ""
	if d.Arg != "" {
		if v := grid.Parse(d.Arg, 0); v.X > 0 && v.Y > 0 {
			w, h := fmt.Sprint(v.X), fmt.Sprint(v.Y)
			attrs = ` width="` + w + `px" height="` + h + `px" viewBox="0 0 ` + w + " " + h + `"`
		}
	}
	doc := `<svg xmlns="` + svg.NS + `" preserveAspectRatio="none"` + attrs + `>` +
		`<foreignObject width="100%" height="100%">` +
		`<div class="host" width="100%" height="100%" xmlns="http://www.w3.org/1999/xhtml">` +
		"<style>" + css + "</style>" + GridMarkup(res.Grid, res.Content) +
		"</div></foreignObject></svg>"
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(doc)), nil
}

// Page renders a standalone HTML document for res.
func (cp *Compiler) Page(ctx context.Context, res *Result, opts Options) (string, error) {
	css, err := cp.Resolve(ctx, res, opts)
	if err != nil {
		return "", err
	}
	return "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>" + css + "</style>\n</head>\n<body>\n" +
		`<div class="host">` + GridMarkup(res.Grid, res.Content) + "</div>\n</body>\n</html>\n", nil
}
