package analysis

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/treasuremap/pkg/graph"
	"github.com/matzehuels/treasuremap/pkg/metadata"
)

var registry = "registry+https://github.com/rust-lang/crates.io-index"

// nodeSpec is a compact node description: name, version, optional size.
type nodeSpec struct {
	name, version string
	size          *uint64
	dev           bool
}

func sz(n uint64) *uint64 { return &n }

// newGraph builds a graph from node specs and edges given as index pairs.
// The first node is the root.
func newGraph(t *testing.T, nodes []nodeSpec, edges [][2]int) *graph.Graph {
	t.Helper()
	ns := make([]graph.Node, len(nodes))
	for i, s := range nodes {
		ns[i] = graph.Node{
			ID:        s.name + " " + s.version,
			Name:      s.name,
			Version:   s.version,
			SizeBytes: s.size,
			IsDev:     s.dev,
		}
		if i > 0 {
			ns[i].Source = &registry
		}
	}
	es := make([]graph.Edge, len(edges))
	for i, e := range edges {
		es[i] = graph.Edge{From: e[0], To: e[1], Kind: metadata.Normal}
	}
	rootID := ""
	if len(ns) > 0 {
		rootID = ns[0].ID
	}
	g, err := graph.New(ns, es, rootID)
	require.NoError(t, err)
	graph.AnnotateDepths(g)
	return g
}

func TestAnalyze(t *testing.T) {
	g := newGraph(t, []nodeSpec{
		{name: "app", version: "0.1.0"},
		{name: "rand", version: "0.8.5", size: sz(4000)},
		{name: "rand", version: "0.7.3", size: sz(3000)},
		{name: "insta", version: "1.34.0", dev: true},
		{name: "rand_core", version: "0.6.4", size: sz(1000)},
	}, [][2]int{{0, 1}, {0, 3}, {3, 2}, {1, 4}, {0, 1}})

	r := Analyze(g, Options{})

	_, err := uuid.Parse(r.RunID)
	assert.NoError(t, err)
	assert.Equal(t, "app v0.1.0", r.Root)
	assert.Equal(t, 5, r.TotalDependencies)
	assert.Equal(t, 3, r.DirectDependencies, "direct count is the root's out-degree")
	assert.Equal(t, 1, r.DevDependencies)
	assert.Equal(t, 2, r.MaxDepth)
	assert.Equal(t, []DuplicateDependency{{Name: "rand", Versions: []string{"0.8.5", "0.7.3"}}}, r.Duplicates)
	assert.Empty(t, r.Cycles)
	assert.Equal(t, uint64(8000), r.TotalSize)
	assert.Equal(t, []SizedEntry{
		{Label: "rand v0.8.5", Bytes: 4000},
		{Label: "rand v0.7.3", Bytes: 3000},
		{Label: "rand_core v0.6.4", Bytes: 1000},
	}, r.Largest)
	assert.Nil(t, r.Enrichment)
}

func TestAnalyzeWithoutRoot(t *testing.T) {
	g, err := graph.New([]graph.Node{{ID: "a 1.0.0", Name: "a", Version: "1.0.0"}}, nil, "")
	require.NoError(t, err)

	r := Analyze(g, Options{TopN: 3})
	assert.Empty(t, r.Root)
	assert.Equal(t, 0, r.DirectDependencies)
	assert.Equal(t, 1, r.TotalDependencies)
}

func TestAnalyzeRunIDsDiffer(t *testing.T) {
	g := newGraph(t, []nodeSpec{{name: "app", version: "0.1.0"}}, nil)
	assert.NotEqual(t, Analyze(g, Options{}).RunID, Analyze(g, Options{}).RunID)
}

func TestFindDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		nodes []nodeSpec
		want  []DuplicateDependency
	}{
		{
			name:  "single version",
			nodes: []nodeSpec{{name: "app", version: "0.1.0"}, {name: "log", version: "0.4.21"}},
			want:  []DuplicateDependency{},
		},
		{
			name: "two versions sorted by name",
			nodes: []nodeSpec{
				{name: "app", version: "0.1.0"},
				{name: "syn", version: "2.0.66"},
				{name: "bitflags", version: "2.5.0"},
				{name: "syn", version: "1.0.109"},
				{name: "bitflags", version: "1.3.2"},
			},
			want: []DuplicateDependency{
				{Name: "bitflags", Versions: []string{"2.5.0", "1.3.2"}},
				{Name: "syn", Versions: []string{"2.0.66", "1.0.109"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindDuplicates(newGraph(t, tt.nodes, nil)))
		})
	}
}

func TestFindDuplicatesKeepsRepeatedVersions(t *testing.T) {
	git := "git+https://github.com/serde-rs/serde#abc"
	nodes := []graph.Node{
		{ID: "serde 1.0.200 (registry)", Name: "serde", Version: "1.0.200", Source: &registry},
		{ID: "serde 1.0.200 (git)", Name: "serde", Version: "1.0.200", Source: &git},
		{ID: "serde 1.0.150", Name: "serde", Version: "1.0.150", Source: &registry},
		{ID: "log 0.4.21 (registry)", Name: "log", Version: "0.4.21", Source: &registry},
		{ID: "log 0.4.21 (git)", Name: "log", Version: "0.4.21", Source: &git},
	}
	g, err := graph.New(nodes, nil, "")
	require.NoError(t, err)

	got := FindDuplicates(g)
	require.Len(t, got, 1, "same name and version twice is not a duplicate")
	assert.Equal(t, []string{"1.0.200", "1.0.200", "1.0.150"}, got[0].Versions)
}

func TestTotalSize(t *testing.T) {
	g := newGraph(t, []nodeSpec{
		{name: "a", version: "1.0.0", size: sz(100)},
		{name: "b", version: "1.0.0"},
		{name: "c", version: "1.0.0", size: sz(50)},
	}, nil)
	assert.Equal(t, uint64(150), TotalSize(g))
}

func TestLargest(t *testing.T) {
	g := newGraph(t, []nodeSpec{
		{name: "app", version: "0.1.0"},
		{name: "a", version: "1.0.0", size: sz(10)},
		{name: "b", version: "1.0.0", size: sz(30)},
		{name: "c", version: "1.0.0", size: sz(10)},
		{name: "d", version: "1.0.0", size: sz(20)},
	}, nil)

	assert.Equal(t, []SizedEntry{
		{Label: "b v1.0.0", Bytes: 30},
		{Label: "d v1.0.0", Bytes: 20},
		{Label: "a v1.0.0", Bytes: 10},
	}, Largest(g, 3), "ties keep node order")
	assert.Len(t, Largest(g, 10), 4, "nodes without size are excluded")
	assert.Empty(t, Largest(g, 0))
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0.00 B"},
		{1023, "1023.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 << 30, "3.00 GB"},
		{2048 << 30, "2048.00 GB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
