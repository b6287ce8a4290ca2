package metadata

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/treasuremap/pkg/toolexec"
)

// Detect chooses a Source for path:
//
//   - "" runs cargo in the current directory
//   - a file named Cargo.lock is read as a lockfile
//   - a *.json file is read as saved `cargo metadata` output
//   - a Cargo.toml, or a directory containing one, runs cargo against it
//
// Anything else is passed to cargo as a manifest path, which reports the
// problem when the source is loaded.
func Detect(path string, runner toolexec.Runner) Source {
	if path == "" {
		return &CargoSource{Runner: runner}
	}
	base := filepath.Base(path)
	switch {
	case strings.EqualFold(base, "Cargo.lock"):
		return &LockfileSource{Path: path}
	case strings.EqualFold(filepath.Ext(base), ".json"):
		return &FileSource{Path: path}
	}
	return &CargoSource{ManifestPath: ManifestFile(path), Runner: runner}
}

// ManifestFile maps a project directory to its Cargo.toml. Other paths,
// including "", are returned unchanged.
func ManifestFile(path string) string {
	if path == "" {
		return ""
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, "Cargo.toml")
	}
	return path
}
