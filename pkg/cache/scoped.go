package cache

// ScopedKeyer wraps a Keyer with a prefix, so several deployments can share
// one Redis database without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "treasuremap:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ToolKey generates a prefixed key for tool output.
func (k *ScopedKeyer) ToolKey(tool string, args []string, scope string) string {
	return k.prefix + k.inner.ToolKey(tool, args, scope)
}

// MetadataKey generates a prefixed key for a metadata snapshot.
func (k *ScopedKeyer) MetadataKey(fingerprint string, opts MetadataKeyOpts) string {
	return k.prefix + k.inner.MetadataKey(fingerprint, opts)
}
