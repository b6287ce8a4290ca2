package metadata

import (
	"context"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	apperrors "github.com/matzehuels/treasuremap/pkg/errors"
)

// LockfileSource reads a Cargo.lock.
//
// Lockfiles record the resolved packages and their edges but no dependency
// kinds, licenses, features or targets, so every edge is Normal and sizes
// are unknown. Each dependency entry pins an exact version when the name is
// ambiguous; that pin is carried as an "=VERSION" requirement.
type LockfileSource struct {
	Path string
	// RootName selects the root package by name. Empty picks the first
	// package without a source, i.e. the first workspace member.
	RootName string
}

type cargoLock struct {
	Packages []lockPackage `toml:"package"`
}

type lockPackage struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Source       string   `toml:"source"`
	Dependencies []string `toml:"dependencies"`
}

// Describe implements Source.
func (s *LockfileSource) Describe() string { return "lockfile " + s.Path }

// Load implements Source.
func (s *LockfileSource) Load(ctx context.Context) (*Metadata, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeMetadata, err, "read lockfile %s", s.Path)
	}
	return ParseLockfile(data, s.RootName)
}

// ParseLockfile decodes Cargo.lock content. See [LockfileSource].
func ParseLockfile(data []byte, rootName string) (*Metadata, error) {
	var lock cargoLock
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeMetadata, err, "decode Cargo.lock")
	}

	md := &Metadata{Packages: make([]Package, 0, len(lock.Packages))}
	for _, lp := range lock.Packages {
		pkg := Package{
			ID:      lockPackageID(lp.Name, lp.Version, lp.Source),
			Name:    lp.Name,
			Version: lp.Version,
		}
		if lp.Source != "" {
			src := lp.Source
			pkg.Source = &src
		}
		for _, entry := range lp.Dependencies {
			if dep, ok := parseLockDependency(entry); ok {
				pkg.Dependencies = append(pkg.Dependencies, dep)
			}
		}
		md.Packages = append(md.Packages, pkg)

		if md.Root != "" {
			continue
		}
		if (rootName != "" && lp.Name == rootName) || (rootName == "" && lp.Source == "") {
			md.Root = pkg.ID
		}
	}
	return md, nil
}

func lockPackageID(name, version, source string) string {
	if source == "" {
		return name + " " + version
	}
	return name + " " + version + " (" + source + ")"
}

// parseLockDependency splits "name", "name version" or
// "name version (source)".
func parseLockDependency(entry string) (Dependency, bool) {
	fields := strings.Fields(entry)
	if len(fields) == 0 {
		return Dependency{}, false
	}
	dep := Dependency{Name: fields[0], Kind: Normal}
	if len(fields) > 1 {
		dep.Req = "=" + fields[1]
	}
	return dep, true
}

var _ Source = (*LockfileSource)(nil)
