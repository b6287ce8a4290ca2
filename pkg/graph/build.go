package graph

import (
	"os"
	"slices"

	"github.com/matzehuels/treasuremap/pkg/metadata"
)

// SizeFunc returns the size in bytes of the file at path, or false when the
// file cannot be measured.
type SizeFunc func(path string) (int64, bool)

// StatSize measures files with os.Stat.
func StatSize(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}

type buildConfig struct {
	size         SizeFunc
	matchVersion bool
}

// BuildOption customizes [Build].
type BuildOption func(*buildConfig)

// WithSizeFunc replaces os.Stat for size estimation.
func WithSizeFunc(f SizeFunc) BuildOption {
	return func(c *buildConfig) { c.size = f }
}

// WithRequirementMatching resolves each dependency to the first package
// whose name matches and whose version satisfies the declared requirement.
// Dependencies with no satisfying candidate, or with a requirement that
// cannot be parsed, fall back to the first package with a matching name.
//
// This changes which node an edge points at when several versions of a
// crate are present; without it, resolution is by name only.
func WithRequirementMatching() BuildOption {
	return func(c *buildConfig) { c.matchVersion = true }
}

// Build turns a metadata snapshot into a graph.
//
// Every package becomes exactly one node, in list order. Every declared
// dependency becomes an edge to the package it resolves to (see
// [WithRequirementMatching]); dependencies naming no known package are
// dropped. A development or build edge marks its target IsDev or IsBuild.
// Marks are only ever set, so a package that is a normal dependency of one
// parent and a dev dependency of another ends up IsDev regardless of the
// order in which the edges are processed.
//
// Build never returns a partially built graph.
func Build(md *metadata.Metadata, opts ...BuildOption) (*Graph, error) {
	if md == nil {
		return nil, ErrNoMetadata
	}
	cfg := buildConfig{size: StatSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	nodes := make([]Node, len(md.Packages))
	byName := make(map[string][]int)
	for i, pkg := range md.Packages {
		nodes[i] = Node{
			ID:        pkg.ID,
			Name:      pkg.Name,
			Version:   pkg.Version,
			Source:    pkg.Source,
			Features:  slices.Clone(pkg.Features),
			SizeBytes: estimateSize(pkg.Targets, cfg.size),
			License:   pkg.License,
		}
		byName[pkg.Name] = append(byName[pkg.Name], i)
	}

	var edges []Edge
	for from, pkg := range md.Packages {
		for _, dep := range pkg.Dependencies {
			to, ok := resolve(md.Packages, byName[dep.Name], dep.Req, cfg.matchVersion)
			if !ok {
				continue
			}
			edges = append(edges, Edge{From: from, To: to, Kind: dep.Kind})
			switch dep.Kind {
			case metadata.Development:
				nodes[to].IsDev = true
			case metadata.Build:
				nodes[to].IsBuild = true
			}
		}
	}

	return New(nodes, edges, md.Root)
}

// resolve picks the target package among the candidates sharing the
// dependency's name. candidates are in list order.
func resolve(pkgs []metadata.Package, candidates []int, req string, matchVersion bool) (int, bool) {
	if len(candidates) == 0 {
		return -1, false
	}
	if matchVersion && req != "" {
		for _, c := range candidates {
			if ok, err := MatchesRequirement(pkgs[c].Version, req); err == nil && ok {
				return c, true
			}
		}
	}
	return candidates[0], true
}

func estimateSize(targets []metadata.Target, size SizeFunc) *uint64 {
	var total uint64
	for _, t := range targets {
		if n, ok := size(t.SrcPath); ok && n > 0 {
			total += uint64(n)
		}
	}
	if total == 0 {
		return nil
	}
	return &total
}
