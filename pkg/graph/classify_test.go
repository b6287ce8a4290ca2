package graph

import "testing"

func TestClassify(t *testing.T) {
	src := registry
	tests := []struct {
		name string
		node Node
		want Class
	}{
		{"workspace member", Node{Depth: 5, IsDev: true}, ClassRoot},
		{"dev beats build", Node{Source: &src, IsDev: true, IsBuild: true}, ClassDev},
		{"build", Node{Source: &src, IsBuild: true, Depth: 9}, ClassBuild},
		{"deep", Node{Source: &src, Depth: 4}, ClassDeep},
		{"threshold is exclusive", Node{Source: &src, Depth: 3}, ClassNormal},
		{"normal", Node{Source: &src, Depth: 1}, ClassNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.node); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNodeLabel(t *testing.T) {
	n := Node{Name: "serde", Version: "1.0.200"}
	if got := n.Label(); got != "serde v1.0.200" {
		t.Errorf("Label() = %q", got)
	}
}
