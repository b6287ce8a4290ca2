// Package io saves and loads built dependency graphs as JSON.
//
// A saved graph can be re-analyzed, re-exported or served without running
// `cargo metadata` again, which makes it a convenient artifact to attach to
// CI runs.
//
// # JSON Format
//
//	{
//	  "root": "app 0.1.0",
//	  "nodes": [
//	    {"id": "app 0.1.0", "name": "app", "version": "0.1.0", "depth": 0},
//	    {"id": "serde 1.0.200 (registry+...)", "name": "serde", "version": "1.0.200",
//	     "source": "registry+...", "license": "MIT OR Apache-2.0", "depth": 1}
//	  ],
//	  "edges": [
//	    {"from": "app 0.1.0", "to": "serde 1.0.200 (registry+...)", "kind": null}
//	  ]
//	}
//
// Edges reference nodes by package id and use cargo's kind spelling: null
// for normal, "dev" or "build". Edge order is preserved, so traversals of
// an imported graph visit children in the original declaration order.
//
// # Import
//
// [ReadJSON] and [ImportJSON] validate the document with the same rules as
// graph construction (unique non-empty ids, known root, edges between known
// nodes) and recompute depths, so stored depth values are informational.
package io
