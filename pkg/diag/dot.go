package diag

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/supply"
)

// Dump is the state captured for one failed (or inspected) net.
type Dump struct {
	Net    string
	Pins   []geom.Shape
	Pairs  []supply.Pair
	Failed *supply.Pair
	// IsFake marks placeholder pins. Optional.
	IsFake func(geom.Shape) bool
}

// ToDOT converts a dump into an undirected Graphviz graph. Nodes are labeled
// with the pin name, layer and center.
func ToDOT(d Dump) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	if d.Net != "" {
		fmt.Fprintf(&buf, "  label=%q;\n", d.Net)
	}
	buf.WriteString("\n")

	ids := make(map[geom.Shape]string)
	node := func(s geom.Shape) string {
		if id, ok := ids[s]; ok {
			return id
		}
		id := "n" + strconv.Itoa(len(ids))
		ids[s] = id
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(s))}
		if d.IsFake != nil && d.IsFake(s) {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(attrs, ", "))
		return id
	}

	for _, p := range d.Pins {
		node(p)
	}
	for _, p := range d.Pairs {
		node(p.Source)
		node(p.Target)
	}
	if d.Failed != nil {
		node(d.Failed.Source)
		node(d.Failed.Target)
	}

	buf.WriteString("\n")
	for _, p := range d.Pairs {
		attrs := fmt.Sprintf("label=%q", strconv.FormatFloat(geom.Round3(p.Length()), 'f', -1, 64))
		if d.Failed != nil && p == *d.Failed {
			attrs += ", color=red, penwidth=3"
		}
		fmt.Fprintf(&buf, "  %s -- %s [%s];\n", ids[p.Source], ids[p.Target], attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(s geom.Shape) string {
	return fmt.Sprintf("%s\n%s %s", s.Name, s.Layer, s.Center())
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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

// normalizeViewBox drops Graphviz's pt-based size attributes so browsers scale
// the dump to its viewBox.
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
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Write stores the dump as <dir>/<net>_error.dot and, if rendering succeeds,
// <dir>/<net>_error.svg. It returns the path of the DOT file. A rendering
// failure is not an error: the DOT file is enough for a postmortem.
func Write(dir string, d Dump) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create diagnostic dir: %w", err)
	}
	base := filepath.Join(dir, unsafeName.ReplaceAllString(d.Net, "_")+"_error")
	dot := ToDOT(d)
	if err := os.WriteFile(base+".dot", []byte(dot), 0o644); err != nil {
		return "", fmt.Errorf("write diagnostic: %w", err)
	}
	if svg, err := RenderSVG(dot); err == nil {
		_ = os.WriteFile(base+".svg", svg, 0o644)
	}
	return base + ".dot", nil
}
