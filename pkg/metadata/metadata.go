// Package metadata supplies the resolved package list that the dependency
// graph is built from.
//
// A [Metadata] snapshot is a flat list of packages, each with its declared
// dependencies, plus the id of the project root. Snapshots are produced by a
// [Source]: [CargoSource] asks `cargo metadata` for the current workspace,
// [FileSource] reads a previously saved `cargo metadata` JSON document and
// [LockfileSource] reads a Cargo.lock. Sources never resolve version
// requirements themselves; they only report what cargo already resolved.
//
// Failing to obtain a snapshot is fatal to the analysis, so every source
// returns errors coded [errors.ErrCodeMetadata].
//
// [errors.ErrCodeMetadata]: github.com/matzehuels/treasuremap/pkg/errors
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
)

// DependencyKind classifies a dependency edge.
type DependencyKind int

const (
	// Normal dependencies are needed to build and run the dependent.
	Normal DependencyKind = iota
	// Development dependencies are only used by tests, examples and benches.
	Development
	// Build dependencies are only used by build scripts.
	Build
)

// String returns the cargo spelling of the kind.
func (k DependencyKind) String() string {
	switch k {
	case Development:
		return "dev"
	case Build:
		return "build"
	default:
		return "normal"
	}
}

// ParseKind converts a cargo kind string. The empty string and "normal" map
// to Normal.
func ParseKind(s string) (DependencyKind, error) {
	switch s {
	case "", "normal":
		return Normal, nil
	case "dev":
		return Development, nil
	case "build":
		return Build, nil
	default:
		return Normal, fmt.Errorf("unknown dependency kind %q", s)
	}
}

// MarshalJSON encodes Normal as null, matching `cargo metadata`.
func (k DependencyKind) MarshalJSON() ([]byte, error) {
	if k == Normal {
		return []byte("null"), nil
	}
	return json.Marshal(k.String())
}

// UnmarshalJSON accepts null or a cargo kind string.
func (k *DependencyKind) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*k = Normal
		return nil
	}
	kind, err := ParseKind(*s)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// MarshalYAML encodes the kind as its cargo spelling.
func (k DependencyKind) MarshalYAML() (any, error) { return k.String(), nil }

// Dependency is one declared dependency of a package.
type Dependency struct {
	Name string
	// Req is the declared version requirement, e.g. "^1.0" or "=0.3.2".
	Req  string
	Kind DependencyKind
}

// Target is a compilation target of a package.
type Target struct {
	SrcPath string
}

// Package is one resolved package.
type Package struct {
	ID      string
	Name    string
	Version string
	// Source is the registry, git or path origin. Nil marks a member of the
	// project's own workspace.
	Source       *string
	License      *string
	Features     []string
	Targets      []Target
	Dependencies []Dependency
}

// Metadata is an immutable snapshot of a resolved project.
type Metadata struct {
	Packages []Package
	// Root is the id of the project root package. It is empty for virtual
	// workspaces with several members.
	Root string
}

// RootPackage returns the package whose id equals Root.
func (m *Metadata) RootPackage() (*Package, bool) {
	if m.Root == "" {
		return nil, false
	}
	for i := range m.Packages {
		if m.Packages[i].ID == m.Root {
			return &m.Packages[i], true
		}
	}
	return nil, false
}

// Source produces a metadata snapshot.
type Source interface {
	Load(ctx context.Context) (*Metadata, error)
	// Describe names the source for logs, e.g. "cargo metadata (./Cargo.toml)".
	Describe() string
}
