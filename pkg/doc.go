// Package pkg holds the libraries behind treasuremap, a dependency-graph
// analyzer for Cargo projects.
//
// # Overview
//
// The packages fall into three groups:
//
//  1. Domain: [metadata] loads a resolved package list, [graph] indexes it,
//     [analysis] derives metrics, [enrich] shells out to cargo plugins.
//  2. Output: [render] (DOT, SVG, terminal tree), [io] (graph JSON) and
//     [server] (read-only HTTP API).
//  3. Infrastructure: [pipeline], [cache], [config], [errors],
//     [observability], [toolexec] and [buildinfo].
//
// # Architecture
//
//	cargo metadata / snapshot / Cargo.lock
//	         ↓
//	    [metadata] package (Source.Load)
//	         ↓
//	    [graph] package (Build + AnnotateDepths)
//	         ↓
//	    [analysis] / [graph].FindPath / [render]
//
// The graph is built and annotated once; every consumer after that only
// reads it.
//
// # Quick Start
//
//	src := metadata.Detect("Cargo.toml", toolexec.NewExecRunner(0))
//	runner := pipeline.NewRunner(src, nil, nil, nil)
//	res, err := runner.Analyze(ctx, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Report.TotalDependencies)
package pkg
