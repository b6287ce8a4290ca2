// Package graph builds and queries the dependency graph of a resolved
// project.
//
// # Representation
//
// A [Graph] is an arena: a slice of [Node] values, a slice of [Edge] values
// that refer to nodes by index, and per-node adjacency lists of edge indices
// kept in declaration order. Every package id maps to exactly one node
// through a lookup table that is built once by [New] and never changes
// afterwards. Edges point from the depending package to its dependency.
//
// # Lifecycle
//
// Graphs are built from an immutable [metadata.Metadata] snapshot with
// [Build], annotated once with [AnnotateDepths], and then only read. Readers
// such as the analysis engine, [FindPath] and the exporters never modify
// the graph, so an annotated graph may be shared between goroutines.
//
// # Name resolution
//
// Cargo identifies a dependency by name plus a version requirement. [Build]
// resolves each dependency to the first package in the snapshot with the
// same name and ignores the requirement. When several major versions of a
// crate coexist, an edge can therefore point at the wrong version node.
// [WithRequirementMatching] opts into requirement-aware resolution instead.
//
// # Depth
//
// Depth is first-discovery depth under a depth-first walk from the root,
// not the shortest distance: a node first reached through a longer path
// keeps that longer depth. Nodes the walk never reaches keep depth 0, the
// same value as the root; use [Graph.Reachable] to tell them apart.
//
// All traversals use explicit stacks, so arbitrarily deep graphs cannot
// exhaust the goroutine stack.
package graph
