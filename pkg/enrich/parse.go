package enrich

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// cargo outdated --format json prints one document per workspace member.
type outdatedReport struct {
	CrateName    string `json:"crate_name"`
	Dependencies []struct {
		Name    string `json:"name"`
		Project string `json:"project"`
		Latest  string `json:"latest"`
	} `json:"dependencies"`
}

// parseOutdated keeps dependencies whose latest release differs from the
// version in use. cargo-outdated prints "---" for a latest version it
// could not determine.
func parseOutdated(data []byte) ([]OutdatedDependency, error) {
	var out []OutdatedDependency
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var report outdatedReport
		err := dec.Decode(&report)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, d := range report.Dependencies {
			if d.Latest == d.Project || d.Latest == "---" {
				continue
			}
			out = append(out, OutdatedDependency{Name: d.Name, Current: d.Project, Latest: d.Latest})
		}
	}
	return out, nil
}

type auditReport struct {
	Vulnerabilities struct {
		List []struct {
			Advisory struct {
				ID      string  `json:"id"`
				Package string  `json:"package"`
				Title   string  `json:"title"`
				CVSS    *string `json:"cvss"`
			} `json:"advisory"`
			Package struct {
				Name string `json:"name"`
			} `json:"package"`
		} `json:"list"`
	} `json:"vulnerabilities"`
}

func parseAudit(data []byte) ([]SecurityIssue, error) {
	var report auditReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	var out []SecurityIssue
	for _, v := range report.Vulnerabilities.List {
		pkg := v.Package.Name
		if pkg == "" {
			pkg = v.Advisory.Package
		}
		severity := "unknown"
		if v.Advisory.CVSS != nil && *v.Advisory.CVSS != "" {
			severity = *v.Advisory.CVSS
		}
		out = append(out, SecurityIssue{
			Package:  pkg,
			Advisory: v.Advisory.ID + ": " + v.Advisory.Title,
			Severity: severity,
		})
	}
	return out, nil
}

// parseUnused extracts dependency names from cargo-machete's report. Each
// affected crate gets a "<crate> -- <manifest>:" header followed by one
// indented line per unused dependency; everything else is narration.
func parseUnused(data []byte) ([]string, error) {
	var out []string
	inSection := false
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			inSection = false
		case line[0] != ' ' && line[0] != '\t':
			inSection = strings.Contains(trimmed, " -- ") && strings.HasSuffix(trimmed, ":")
		case inSection:
			out = append(out, trimmed)
		}
	}
	return out, nil
}
