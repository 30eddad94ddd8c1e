package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/scenegrid/pkg/core/scene"
	sceneio "github.com/matzehuels/scenegrid/pkg/io"
	"github.com/matzehuels/scenegrid/pkg/render/dot"
	"github.com/matzehuels/scenegrid/pkg/render/svg"
)

// Render generates output artifacts in the requested formats.
//
// The svg, png and pdf formats draw the scene itself. json is the resolved
// layout export and dot is the layout tree as a Graphviz graph.
func Render(ctx context.Context, s *scene.Scene, opts Options) (map[string][]byte, error) {
	var svgOpts []svg.Option
	if opts.GridLines {
		svgOpts = append(svgOpts, svg.WithGridLines())
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svg.RenderSVG(s, svgOpts...)
		case FormatPNG:
			data, err = svg.RenderPNG(s, opts.Scale, svgOpts...)
		case FormatPDF:
			data, err = svg.RenderPDF(s, svgOpts...)
		case FormatJSON:
			var buf bytes.Buffer
			err = sceneio.WriteLayout(s, &buf)
			data = buf.Bytes()
		case FormatDOT:
			data = []byte(dot.ToDOT(s, dot.Options{Detailed: opts.Detailed}))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
