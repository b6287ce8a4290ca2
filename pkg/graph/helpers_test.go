package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/treasuremap/pkg/metadata"
)

const registry = "registry+https://github.com/rust-lang/crates.io-index"

func id(name, version string) string { return name + " " + version }

func rootPkg(name string, deps ...metadata.Dependency) metadata.Package {
	return metadata.Package{ID: id(name, "0.1.0"), Name: name, Version: "0.1.0", Dependencies: deps}
}

func regPkg(name, version string, deps ...metadata.Dependency) metadata.Package {
	src := registry
	return metadata.Package{ID: id(name, version), Name: name, Version: version, Source: &src, Dependencies: deps}
}

func dep(name string) metadata.Dependency { return metadata.Dependency{Name: name, Kind: metadata.Normal} }

func devDep(name string) metadata.Dependency {
	return metadata.Dependency{Name: name, Kind: metadata.Development}
}

func buildDep(name string) metadata.Dependency {
	return metadata.Dependency{Name: name, Kind: metadata.Build}
}

func reqDep(name, req string) metadata.Dependency {
	return metadata.Dependency{Name: name, Req: req, Kind: metadata.Normal}
}

// snapshot returns metadata whose first package is the root.
func snapshot(pkgs ...metadata.Package) *metadata.Metadata {
	md := &metadata.Metadata{Packages: pkgs}
	if len(pkgs) > 0 {
		md.Root = pkgs[0].ID
	}
	return md
}

func noSize(string) (int64, bool) { return 0, false }

func mustBuild(t *testing.T, md *metadata.Metadata, opts ...BuildOption) *Graph {
	t.Helper()
	g, err := Build(md, append([]BuildOption{WithSizeFunc(noSize)}, opts...)...)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func mustIndex(t *testing.T, g *Graph, name, version string) int {
	t.Helper()
	i, ok := g.Index(id(name, version))
	if !ok {
		t.Fatalf("no node %s %s", name, version)
	}
	return i
}

func nodeByName(t *testing.T, g *Graph, name string) Node {
	t.Helper()
	i, ok := g.FindByName(name)
	if !ok {
		t.Fatalf("no node named %s", name)
	}
	return g.Node(i)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
