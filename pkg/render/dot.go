package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stackorder/pkg/plan"
)

// ToDOT converts a scheduled plan to Graphviz DOT. Each batch becomes a
// cluster; edges follow the dependencies declared in p. p may be nil, in
// which case only the batches and broken links are drawn.
func ToDOT(p *plan.Plan, s *plan.Schedule) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	for i, b := range s.Batches {
		fmt.Fprintf(&buf, "\n  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=\"Batch %d\";\n", i+1)
		buf.WriteString("    style=\"rounded,dashed\";\n")
		buf.WriteString("    color=grey;\n")
		for _, id := range b {
			fmt.Fprintf(&buf, "    %s [%s];\n", dotQuote(id), strings.Join(nodeAttrs(p, id), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	if p != nil {
		for _, st := range p.Steps {
			for _, dep := range st.After {
				if !isBroken(s, dep, st.ID) {
					fmt.Fprintf(&buf, "  %s -> %s;\n", dotQuote(dep), dotQuote(st.ID))
				}
			}
			for _, n := range st.Needs {
				if isBroken(s, n.Step, st.ID) {
					continue
				}
				if attrs := edgeAttrs(n); len(attrs) > 0 {
					fmt.Fprintf(&buf, "  %s -> %s [%s];\n", dotQuote(n.Step), dotQuote(st.ID), strings.Join(attrs, ", "))
				} else {
					fmt.Fprintf(&buf, "  %s -> %s;\n", dotQuote(n.Step), dotQuote(st.ID))
				}
			}
		}
	}
	for _, l := range s.Broken {
		attrs := []string{"color=red", "fontcolor=red", "style=dotted", "constraint=false"}
		if len(l.Reasons) > 0 {
			attrs = append(attrs, "label="+dotQuote(strings.Join(l.Reasons, "\n")))
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", dotQuote(l.From), dotQuote(l.To), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(p *plan.Plan, id string) []string {
	label := id
	if desc := describe(p, id); desc != "" {
		label = id + "\n" + desc
	}
	return []string{"label=" + dotQuote(label)}
}

func edgeAttrs(n plan.Need) []string {
	var attrs []string
	switch {
	case n.Boundary && n.Weak:
		attrs = append(attrs, `style="dashed,dotted"`)
	case n.Boundary:
		attrs = append(attrs, "style=dashed")
	case n.Weak:
		attrs = append(attrs, "style=dotted")
	}
	if n.Reason != "" {
		attrs = append(attrs, "tooltip="+dotQuote(n.Reason))
	}
	return attrs
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// dotQuote returns s as a DOT quoted string. Only backslashes, quotes and
// newlines are escaped; every other rune is written as is.
func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func isBroken(s *plan.Schedule, from, to string) bool {
	for _, l := range s.Broken {
		if l.From == from && l.To == to {
			return true
		}
	}
	return false
}

// RenderSVG lays out a DOT graph with Graphviz and returns SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG lays out a DOT graph with Graphviz and returns PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz point-based svg header with one
// whose viewBox starts at the origin, so the image scales in browsers.
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

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
