package metadata

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/matzehuels/treasuremap/pkg/errors"
	"github.com/matzehuels/treasuremap/pkg/toolexec"
)

func TestDependencyKindJSON(t *testing.T) {
	tests := []struct {
		in   string
		want DependencyKind
	}{
		{`null`, Normal},
		{`"normal"`, Normal},
		{`"dev"`, Development},
		{`"build"`, Build},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var k DependencyKind
			require.NoError(t, json.Unmarshal([]byte(tt.in), &k))
			assert.Equal(t, tt.want, k)
		})
	}

	var k DependencyKind
	assert.Error(t, json.Unmarshal([]byte(`"proc-macro"`), &k))

	out, err := json.Marshal([]DependencyKind{Normal, Development, Build})
	require.NoError(t, err)
	assert.JSONEq(t, `[null, "dev", "build"]`, string(out))
}

func TestParseCargoJSON(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "metadata.json"))
	require.NoError(t, err)

	md, err := ParseCargoJSON(data)
	require.NoError(t, err)
	require.Len(t, md.Packages, 4)

	root, ok := md.RootPackage()
	require.True(t, ok)
	assert.Equal(t, "app", root.Name)
	assert.Nil(t, root.Source)
	require.NotNil(t, root.License)
	assert.Equal(t, "MIT", *root.License)
	assert.Equal(t, []string{"default", "json"}, root.Features)
	assert.Equal(t, []Target{{SrcPath: "/work/app/src/main.rs"}}, root.Targets)
	assert.Equal(t, []Dependency{
		{Name: "serde", Req: "^1.0", Kind: Normal},
		{Name: "insta", Req: "^1.34", Kind: Development},
		{Name: "cc", Req: "^1", Kind: Build},
	}, root.Dependencies)

	insta := md.Packages[2]
	assert.Nil(t, insta.License)
	assert.NotNil(t, insta.Source)
	assert.Empty(t, insta.Features)
}

func TestParseCargoJSON_RootFallsBackToSingleMember(t *testing.T) {
	md, err := ParseCargoJSON([]byte(`{
		"packages": [{"id": "a 1.0.0", "name": "a", "version": "1.0.0"}],
		"workspace_members": ["a 1.0.0"],
		"resolve": {"root": null}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "a 1.0.0", md.Root)
}

func TestParseCargoJSON_VirtualWorkspaceHasNoRoot(t *testing.T) {
	md, err := ParseCargoJSON([]byte(`{
		"packages": [],
		"workspace_members": ["a 1.0.0", "b 1.0.0"],
		"resolve": null
	}`))
	require.NoError(t, err)
	assert.Empty(t, md.Root)
	_, ok := md.RootPackage()
	assert.False(t, ok)
}

func TestParseCargoJSON_Malformed(t *testing.T) {
	_, err := ParseCargoJSON([]byte(`{"packages": [`))
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeMetadata))
}

func TestCargoSource_Load(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "metadata.json"))
	require.NoError(t, err)

	var gotArgs []string
	src := &CargoSource{
		ManifestPath: "/work/app/Cargo.toml",
		Runner: toolexec.RunnerFunc(func(_ context.Context, name string, args ...string) (toolexec.Output, error) {
			assert.Equal(t, "cargo", name)
			gotArgs = args
			return toolexec.Output{Stdout: data}, nil
		}),
	}

	md, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, md.Packages, 4)
	assert.Equal(t, []string{"metadata", "--format-version", "1", "--manifest-path", "/work/app/Cargo.toml"}, gotArgs)
	assert.Contains(t, src.Describe(), "/work/app/Cargo.toml")
}

func TestCargoSource_Failures(t *testing.T) {
	tests := []struct {
		name   string
		runner toolexec.RunnerFunc
		want   string
	}{
		{
			name: "tool missing",
			runner: func(context.Context, string, ...string) (toolexec.Output, error) {
				return toolexec.Output{}, apperrors.New(apperrors.ErrCodeToolMissing, "cargo is not installed")
			},
			want: "cargo is not installed",
		},
		{
			name: "non-zero exit",
			runner: func(context.Context, string, ...string) (toolexec.Output, error) {
				return toolexec.Output{ExitCode: 101, Stderr: []byte("error: could not find `Cargo.toml`\n")}, nil
			},
			want: "could not find `Cargo.toml`",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := (&CargoSource{Runner: tt.runner}).Load(context.Background())
			assert.Nil(t, md)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeMetadata))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFileSource(t *testing.T) {
	md, err := (&FileSource{Path: filepath.Join("testdata", "metadata.json")}).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, md.Packages, 4)

	_, err = (&FileSource{Path: filepath.Join("testdata", "missing.json")}).Load(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeMetadata))
}

func TestLockfileSource(t *testing.T) {
	md, err := (&LockfileSource{Path: filepath.Join("testdata", "Cargo.lock")}).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, md.Packages, 5)

	assert.Equal(t, "app 0.1.0", md.Root)
	app := md.Packages[0]
	assert.Nil(t, app.Source)
	assert.Equal(t, []Dependency{
		{Name: "rand", Req: "=0.8.5"},
		{Name: "rand_core", Req: "=0.6.4"},
		{Name: "serde"},
	}, app.Dependencies)

	rand7 := md.Packages[1]
	assert.Equal(t, "rand 0.7.3 (registry+https://github.com/rust-lang/crates.io-index)", rand7.ID)
	require.NotNil(t, rand7.Source)
	assert.Empty(t, rand7.Dependencies)
}

func TestParseLockfile_RootName(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "Cargo.lock"))
	require.NoError(t, err)

	md, err := ParseLockfile(data, "serde")
	require.NoError(t, err)
	root, ok := md.RootPackage()
	require.True(t, ok)
	assert.Equal(t, "serde", root.Name)
}

func TestParseLockfile_Malformed(t *testing.T) {
	_, err := ParseLockfile([]byte("[[package]\nname ="), "")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeMetadata))
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()

	assert.IsType(t, &CargoSource{}, Detect("", nil))
	assert.IsType(t, &LockfileSource{}, Detect(filepath.Join(dir, "Cargo.lock"), nil))
	assert.IsType(t, &FileSource{}, Detect(filepath.Join(dir, "snapshot.json"), nil))

	src, ok := Detect(dir, nil).(*CargoSource)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "Cargo.toml"), src.ManifestPath)

	src, ok = Detect(filepath.Join(dir, "Cargo.toml"), nil).(*CargoSource)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "Cargo.toml"), src.ManifestPath)
}

func TestManifestFile(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "", ManifestFile(""))
	assert.Equal(t, filepath.Join(dir, "Cargo.toml"), ManifestFile(dir))
	assert.Equal(t, filepath.Join(dir, "Cargo.toml"), ManifestFile(filepath.Join(dir, "Cargo.toml")))
	assert.Equal(t, filepath.Join(dir, "missing"), ManifestFile(filepath.Join(dir, "missing")))
}

func TestCargoSourceFingerprint(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Cargo.toml")
	require.NoError(t, os.WriteFile(manifest, []byte("[package]\nname = \"app\"\n"), 0o644))
	src := &CargoSource{ManifestPath: manifest}

	first, err := src.Fingerprint()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.lock"), []byte("version = 3\n"), 0o644))
	withLock, err := src.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, first, withLock, "adding a lockfile changes the fingerprint")

	again, err := src.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, withLock, again)

	_, err = (&CargoSource{ManifestPath: filepath.Join(dir, "missing.toml")}).Fingerprint()
	assert.Error(t, err)
}
