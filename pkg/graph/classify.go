package graph

// DeepThreshold is the depth beyond which a node is classified as deep.
const DeepThreshold = 3

// Class is the display classification of a node.
type Class int

const (
	ClassNormal Class = iota
	ClassRoot
	ClassDev
	ClassBuild
	ClassDeep
)

// String returns a lower-case name for the class.
func (c Class) String() string {
	switch c {
	case ClassRoot:
		return "root"
	case ClassDev:
		return "dev"
	case ClassBuild:
		return "build"
	case ClassDeep:
		return "deep"
	default:
		return "normal"
	}
}

// Classify returns the first matching class of: workspace member (root),
// dev dependency, build dependency, deeper than DeepThreshold, normal.
func Classify(n Node) Class {
	switch {
	case n.IsWorkspaceMember():
		return ClassRoot
	case n.IsDev:
		return ClassDev
	case n.IsBuild:
		return ClassBuild
	case n.Depth > DeepThreshold:
		return ClassDeep
	default:
		return ClassNormal
	}
}
