package metadata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apperrors "github.com/matzehuels/treasuremap/pkg/errors"
	"github.com/matzehuels/treasuremap/pkg/toolexec"
)

// cargoMetadata mirrors the parts of `cargo metadata --format-version 1`
// that the graph needs.
type cargoMetadata struct {
	Packages         []cargoPackage `json:"packages"`
	WorkspaceMembers []string       `json:"workspace_members"`
	Resolve          *struct {
		Root *string `json:"root"`
	} `json:"resolve"`
}

type cargoPackage struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Version      string              `json:"version"`
	Source       *string             `json:"source"`
	License      *string             `json:"license"`
	Features     map[string][]string `json:"features"`
	Targets      []cargoTarget       `json:"targets"`
	Dependencies []cargoDependency   `json:"dependencies"`
}

type cargoTarget struct {
	SrcPath string `json:"src_path"`
}

type cargoDependency struct {
	Name string         `json:"name"`
	Req  string         `json:"req"`
	Kind DependencyKind `json:"kind"`
}

// ParseCargoJSON decodes a `cargo metadata --format-version 1` document.
//
// Feature names are taken from the keys of the package's feature table and
// sorted. The root is resolve.root when present, otherwise the only
// workspace member when there is exactly one.
func ParseCargoJSON(data []byte) (*Metadata, error) {
	var raw cargoMetadata
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeMetadata, err, "decode cargo metadata")
	}

	md := &Metadata{Packages: make([]Package, 0, len(raw.Packages))}
	for _, p := range raw.Packages {
		pkg := Package{
			ID:       p.ID,
			Name:     p.Name,
			Version:  p.Version,
			Source:   p.Source,
			License:  p.License,
			Features: slices.Sorted(maps.Keys(p.Features)),
		}
		for _, t := range p.Targets {
			pkg.Targets = append(pkg.Targets, Target{SrcPath: t.SrcPath})
		}
		for _, d := range p.Dependencies {
			pkg.Dependencies = append(pkg.Dependencies, Dependency{Name: d.Name, Req: d.Req, Kind: d.Kind})
		}
		md.Packages = append(md.Packages, pkg)
	}

	switch {
	case raw.Resolve != nil && raw.Resolve.Root != nil:
		md.Root = *raw.Resolve.Root
	case len(raw.WorkspaceMembers) == 1:
		md.Root = raw.WorkspaceMembers[0]
	}
	return md, nil
}

// CargoSource runs `cargo metadata` for a workspace.
type CargoSource struct {
	// ManifestPath points at a Cargo.toml. Empty means the workspace
	// containing the current directory.
	ManifestPath string
	// Runner executes cargo. Nil means a toolexec.ExecRunner with the
	// default timeout.
	Runner toolexec.Runner
}

// Describe implements Source.
func (s *CargoSource) Describe() string {
	if s.ManifestPath == "" {
		return "cargo metadata"
	}
	return "cargo metadata (" + s.ManifestPath + ")"
}

// Load implements Source.
func (s *CargoSource) Load(ctx context.Context) (*Metadata, error) {
	runner := s.Runner
	if runner == nil {
		runner = toolexec.NewExecRunner(toolexec.DefaultTimeout)
	}

	args := []string{"metadata", "--format-version", "1"}
	if s.ManifestPath != "" {
		args = append(args, "--manifest-path", s.ManifestPath)
	}

	out, err := runner.Run(ctx, "cargo", args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeMetadata, err, "failed to get cargo metadata")
	}
	if !out.Success() {
		msg := strings.TrimSpace(string(out.Stderr))
		if msg == "" {
			msg = "no output"
		}
		return nil, apperrors.New(apperrors.ErrCodeMetadata, "failed to get cargo metadata: exit status %d: %s", out.ExitCode, msg)
	}
	return ParseCargoJSON(out.Stdout)
}

// Fingerprint hashes the manifest and, when present, the Cargo.lock next
// to it. Two loads with the same fingerprint resolve the same packages as
// long as no other workspace manifest changed.
func (s *CargoSource) Fingerprint() (string, error) {
	manifest := s.ManifestPath
	if manifest == "" {
		manifest = "Cargo.toml"
	}
	abs, err := filepath.Abs(manifest)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(abs))
	for _, path := range []string{abs, filepath.Join(filepath.Dir(abs), "Cargo.lock")} {
		data, err := os.ReadFile(path)
		if err != nil {
			if path != abs && os.IsNotExist(err) {
				continue
			}
			return "", err
		}
		h.Write([]byte{0})
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileSource reads a saved `cargo metadata --format-version 1` document.
type FileSource struct {
	Path string
}

// Describe implements Source.
func (s *FileSource) Describe() string { return "metadata file " + s.Path }

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) (*Metadata, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeMetadata, err, "read metadata file %s", s.Path)
	}
	return ParseCargoJSON(data)
}

var (
	_ Source = (*CargoSource)(nil)
	_ Source = (*FileSource)(nil)
)
