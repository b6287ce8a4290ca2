// Package enrich runs best-effort checks against external cargo plugins:
// outdated versions (cargo-outdated), security advisories (cargo-audit) and
// unused dependencies (cargo-machete).
//
// None of the checks can fail. A tool that is missing, exits non-zero,
// times out or prints something unparseable produces an empty result whose
// [Status] is [StatusNotChecked], which callers must present differently
// from [StatusChecked] with zero items. The dependency graph is never
// consulted or modified.
package enrich

// Status says whether a check produced trustworthy data.
type Status string

const (
	// StatusNotChecked means the tool could not be run or its output could
	// not be used. The result carries no information about the project.
	StatusNotChecked Status = "not_checked"

	// StatusChecked means the tool ran successfully. An empty item list is
	// a confirmed "nothing found".
	StatusChecked Status = "checked"
)

// Check is the outcome of one enrichment check.
type Check[T any] struct {
	Status Status `json:"status" yaml:"status"`
	// Reason explains a StatusNotChecked result.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Items  []T    `json:"items" yaml:"items"`
}

// Checked reports whether the check ran successfully.
func (c Check[T]) Checked() bool { return c.Status == StatusChecked }

func checked[T any](items []T) Check[T] {
	if items == nil {
		items = []T{}
	}
	return Check[T]{Status: StatusChecked, Items: items}
}

func notChecked[T any](reason string) Check[T] {
	return Check[T]{Status: StatusNotChecked, Reason: reason, Items: []T{}}
}

// OutdatedDependency is a dependency with a newer release available.
type OutdatedDependency struct {
	Name    string `json:"name" yaml:"name"`
	Current string `json:"current" yaml:"current"`
	Latest  string `json:"latest" yaml:"latest"`
}

// SecurityIssue is a published advisory affecting a dependency.
type SecurityIssue struct {
	Package string `json:"package" yaml:"package"`
	// Advisory is "<id>: <title>".
	Advisory string `json:"advisory" yaml:"advisory"`
	// Severity is the advisory's CVSS vector, or "unknown".
	Severity string `json:"severity" yaml:"severity"`
}

// Results collects the three checks.
type Results struct {
	Outdated Check[OutdatedDependency] `json:"outdated" yaml:"outdated"`
	Security Check[SecurityIssue]      `json:"security" yaml:"security"`
	Unused   Check[string]             `json:"unused" yaml:"unused"`
}
