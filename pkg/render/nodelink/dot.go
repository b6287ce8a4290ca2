package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	apperrors "github.com/matzehuels/treasuremap/pkg/errors"
	"github.com/matzehuels/treasuremap/pkg/graph"
	"github.com/matzehuels/treasuremap/pkg/metadata"
)

// Color returns the DOT node color for a classification.
func Color(c graph.Class) string {
	switch c {
	case graph.ClassRoot:
		return "green"
	case graph.ClassDev:
		return "blue"
	case graph.ClassBuild:
		return "orange"
	case graph.ClassDeep:
		return "gray"
	default:
		return "yellow"
	}
}

// Style returns the DOT edge style for a dependency kind.
func Style(k metadata.DependencyKind) string {
	switch k {
	case metadata.Development:
		return "dashed"
	case metadata.Build:
		return "dotted"
	default:
		return "solid"
	}
}

// ToDOT converts a dependency graph to Graphviz DOT source.
//
// Nodes are emitted in index order and edges in declaration order. Node
// statements are keyed by package name, so several versions of one crate
// collapse into a single Graphviz node when rendered.
func ToDOT(g *graph.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("    rankdir=LR;\n")
	buf.WriteString("    node [shape=box];\n\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "    %s [label=\"%s\\nv%s\", color=\"%s\"];\n",
			quote(n.Name), escape(n.Name), escape(n.Version), Color(graph.Classify(n)))
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "    %s -> %s [style=\"%s\"];\n",
			quote(g.Node(e.From).Name), quote(g.Node(e.To).Name), Style(e.Kind))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// WriteDOT writes the DOT source of g to w.
func WriteDOT(g *graph.Graph, w io.Writer) error {
	_, err := io.WriteString(w, ToDOT(g))
	return err
}

// ExportDOT writes the DOT source of g to the file at path, replacing it.
func ExportDOT(g *graph.Graph, path string) error {
	if err := os.WriteFile(path, []byte(ToDOT(g)), 0o644); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeIO, err, "failed to write %s", path)
	}
	return nil
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escape(s string) string { return dotEscaper.Replace(s) }

func quote(s string) string { return `"` + escape(s) + `"` }

// Validate parses DOT source with Graphviz and reports syntax errors.
func Validate(dot string) error {
	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	return g.Close()
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag so the image scales with its
// container instead of using Graphviz's point-based size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
