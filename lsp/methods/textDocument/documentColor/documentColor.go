// Package documentcolor decorates the color literals of doodle sources.
package documentcolor

import (
	"bennypowers.dev/cssdoodle/internal/color"
	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/lsp/helpers"
	"bennypowers.dev/cssdoodle/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DocumentColor handles the textDocument/documentColor request
func DocumentColor(req *types.RequestContext, params *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	uri := params.TextDocument.URI
	log.Debug("DocumentColor requested: %s", uri)

	doc := req.Server.Document(uri)
	if doc == nil {
		return nil, nil
	}
	content := doc.Content()

	colors := []protocol.ColorInformation{}
	for _, span := range helpers.Spans(doc) {
		for _, m := range color.Find(content[span.Start:span.End]) {
			r, g, b, a := m.Color.Floats()
			colors = append(colors, protocol.ColorInformation{
				Range: helpers.Range(content, span.Start+m.Start, span.Start+m.End),
				Color: protocol.Color{
					Red:   protocol.Decimal(r),
					Green: protocol.Decimal(g),
					Blue:  protocol.Decimal(b),
					Alpha: protocol.Decimal(a),
				},
			})
		}
	}
	return colors, nil
}

// ColorPresentation handles the textDocument/colorPresentation request
func ColorPresentation(req *types.RequestContext, params *protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	c := color.FromFloats(
		float64(params.Color.Red),
		float64(params.Color.Green),
		float64(params.Color.Blue),
		float64(params.Color.Alpha),
	)
	return []protocol.ColorPresentation{
		{Label: c.Hex()},
		{Label: c.RGB()},
	}, nil
}
