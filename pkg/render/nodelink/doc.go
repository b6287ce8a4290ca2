// Package nodelink exports dependency graphs as Graphviz node-link diagrams.
//
// # DOT Format
//
// [ToDOT] produces a left-to-right digraph with one box per package and one
// arrow per dependency edge:
//
//	digraph dependencies {
//	    rankdir=LR;
//	    node [shape=box];
//
//	    "app" [label="app\nv0.1.0", color="green"];
//	    "serde" [label="serde\nv1.0.200", color="yellow"];
//	    "app" -> "serde" [style="solid"];
//	}
//
// Node colors follow [graph.Classify]: workspace members green, dev
// dependencies blue, build dependencies orange, nodes deeper than
// [graph.DeepThreshold] gray and everything else yellow. Edge styles follow
// the dependency kind: dashed for dev, dotted for build, solid otherwise.
//
// # Rendering
//
// [RenderSVG] renders DOT in-process with [github.com/goccy/go-graphviz],
// so no Graphviz installation is needed:
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(g))
package nodelink
