// Package render turns a computed schedule into output formats.
//
// Supported formats:
//
//   - text: one block per batch, listing steps with their descriptions
//   - json: the schedule as indented JSON
//   - dot:  a Graphviz digraph with one cluster per batch
//   - svg, png: the DOT graph laid out by Graphviz
//
// Edge styles in DOT output encode dependency kinds: boundary dependencies
// are dashed, weak dependencies are dotted and dependencies dropped to break
// a cycle are drawn in red without affecting the layout.
//
//	dot := render.ToDOT(p, sched)
//	svg, err := render.RenderSVG(ctx, dot)
//
// [Render] dispatches on a format name and is what the CLI and server use.
package render
