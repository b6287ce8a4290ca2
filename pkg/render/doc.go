// Package render turns dependency graphs into text and images.
//
//   - [nodelink] writes Graphviz DOT and renders it to SVG.
//   - [tree] prints an indented box-drawing tree for terminals.
//
// Renderers only read the graph; they may run concurrently over the same
// annotated graph.
package render
