package graph_test

import (
	"fmt"

	"github.com/matzehuels/treasuremap/pkg/graph"
	"github.com/matzehuels/treasuremap/pkg/metadata"
)

func Example() {
	registry := "registry+https://github.com/rust-lang/crates.io-index"
	md := &metadata.Metadata{
		Root: "app 0.1.0",
		Packages: []metadata.Package{
			{ID: "app 0.1.0", Name: "app", Version: "0.1.0", Dependencies: []metadata.Dependency{
				{Name: "tokio", Kind: metadata.Normal},
				{Name: "insta", Kind: metadata.Development},
			}},
			{ID: "tokio 1.37.0", Name: "tokio", Version: "1.37.0", Source: &registry, Dependencies: []metadata.Dependency{
				{Name: "mio", Kind: metadata.Normal},
			}},
			{ID: "mio 0.8.11", Name: "mio", Version: "0.8.11", Source: &registry},
			{ID: "insta 1.34.0", Name: "insta", Version: "1.34.0", Source: &registry},
		},
	}

	g, err := graph.Build(md)
	if err != nil {
		panic(err)
	}
	graph.AnnotateDepths(g)

	for _, n := range g.Nodes() {
		fmt.Printf("%-14s depth=%d class=%s\n", n.Label(), n.Depth, graph.Classify(n))
	}
	path, _ := graph.FindPath(g, "app", "mio")
	fmt.Println(path)
	// Output:
	// app v0.1.0     depth=0 class=root
	// tokio v1.37.0  depth=1 class=normal
	// mio v0.8.11    depth=2 class=normal
	// insta v1.34.0  depth=1 class=dev
	// [app tokio mio]
}
