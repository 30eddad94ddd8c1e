// Package dot exports the layout tree of a scene as a Graphviz digraph.
//
// Every grid becomes a node with an edge to each element placed in it,
// labelled with the cell span it occupies. Nested grids are drawn dashed so
// sub-layouts created by recipes stand out:
//
//	src := dot.ToDOT(s, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
package dot
