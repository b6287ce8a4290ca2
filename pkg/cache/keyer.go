package cache

import "strings"

// Keyer builds cache keys.
type Keyer interface {
	// ToolKey identifies the output of one external tool invocation.
	// scope distinguishes projects and their state, typically a
	// fingerprint of the manifest and lockfile.
	ToolKey(tool string, args []string, scope string) string

	// MetadataKey identifies a metadata snapshot by a fingerprint of the
	// files it was resolved from.
	MetadataKey(fingerprint string, opts MetadataKeyOpts) string
}

// MetadataKeyOpts holds the load options that change a snapshot.
type MetadataKeyOpts struct {
	Source string `json:"source"`
}

// DefaultKeyer is the key layout used by the CLI and the server.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ToolKey returns "tool:<tool>:<hash>" where the hash covers args and scope.
func (DefaultKeyer) ToolKey(tool string, args []string, scope string) string {
	return hashKey("tool:"+tool, strings.Join(args, "\x00"), scope)
}

// MetadataKey returns "metadata:<hash>".
func (DefaultKeyer) MetadataKey(fingerprint string, opts MetadataKeyOpts) string {
	return hashKey("metadata", fingerprint, opts)
}

var _ Keyer = DefaultKeyer{}
