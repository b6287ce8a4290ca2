package graph

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// comparator is a single bound on a version, e.g. ">= v1.2.0".
type comparator struct {
	op      string // one of "=", ">", ">=", "<", "<="
	version string // canonical semver with a leading "v"
}

// partialVersion is a possibly incomplete version such as "1", "1.2" or
// "1.2.3-rc.1". n counts the numeric components present; wildcards end it.
type partialVersion struct {
	major, minor, patch int
	n                   int
	pre                 string
}

func (p partialVersion) at(major, minor, patch int) string {
	return fmt.Sprintf("v%d.%d.%d", major, minor, patch)
}

func (p partialVersion) floor() string {
	v := p.at(p.major, p.minor, p.patch)
	if p.pre != "" {
		v += "-" + p.pre
	}
	return v
}

// MatchesRequirement reports whether version satisfies a cargo version
// requirement such as "^1.2", "~0.3.1", ">=1, <3", "=2.0.0" or "1.*".
// A bare version is a caret requirement. An empty requirement matches
// everything. Pre-release versions are compared by semver precedence
// without cargo's extra pre-release opt-in rule.
func MatchesRequirement(version, req string) (bool, error) {
	comparators, err := parseRequirement(req)
	if err != nil {
		return false, err
	}
	v := "v" + strings.TrimPrefix(version, "v")
	if !semver.IsValid(v) {
		return false, fmt.Errorf("invalid version %q", version)
	}
	for _, c := range comparators {
		cmp := semver.Compare(v, c.version)
		var ok bool
		switch c.op {
		case "=":
			ok = cmp == 0
		case ">":
			ok = cmp > 0
		case ">=":
			ok = cmp >= 0
		case "<":
			ok = cmp < 0
		case "<=":
			ok = cmp <= 0
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func parseRequirement(req string) ([]comparator, error) {
	var out []comparator
	for _, part := range strings.Split(req, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cs, err := parseComparator(part)
		if err != nil {
			return nil, fmt.Errorf("requirement %q: %w", req, err)
		}
		out = append(out, cs...)
	}
	return out, nil
}

func parseComparator(s string) ([]comparator, error) {
	op := ""
	for _, candidate := range []string{">=", "<=", ">", "<", "=", "^", "~"} {
		if strings.HasPrefix(s, candidate) {
			op = candidate
			s = strings.TrimSpace(s[len(candidate):])
			break
		}
	}
	p, wildcard, err := parsePartial(s)
	if err != nil {
		return nil, err
	}
	if op == "" {
		op = "^"
		if wildcard {
			op = "="
		}
	}

	switch op {
	case "=":
		switch p.n {
		case 0:
			return nil, nil
		case 1:
			return []comparator{{">=", p.at(p.major, 0, 0)}, {"<", p.at(p.major+1, 0, 0)}}, nil
		case 2:
			return []comparator{{">=", p.at(p.major, p.minor, 0)}, {"<", p.at(p.major, p.minor+1, 0)}}, nil
		default:
			return []comparator{{"=", p.floor()}}, nil
		}
	case ">":
		switch p.n {
		case 0:
			return []comparator{{"<", p.at(0, 0, 0)}}, nil
		case 1:
			return []comparator{{">=", p.at(p.major+1, 0, 0)}}, nil
		case 2:
			return []comparator{{">=", p.at(p.major, p.minor+1, 0)}}, nil
		default:
			return []comparator{{">", p.floor()}}, nil
		}
	case ">=":
		if p.n == 0 {
			return nil, nil
		}
		return []comparator{{">=", p.floor()}}, nil
	case "<":
		if p.n == 0 {
			return []comparator{{"<", p.at(0, 0, 0)}}, nil
		}
		return []comparator{{"<", p.floor()}}, nil
	case "<=":
		switch p.n {
		case 0:
			return nil, nil
		case 1:
			return []comparator{{"<", p.at(p.major+1, 0, 0)}}, nil
		case 2:
			return []comparator{{"<", p.at(p.major, p.minor+1, 0)}}, nil
		default:
			return []comparator{{"<=", p.floor()}}, nil
		}
	case "~":
		switch p.n {
		case 0:
			return nil, nil
		case 1:
			return []comparator{{">=", p.floor()}, {"<", p.at(p.major+1, 0, 0)}}, nil
		default:
			return []comparator{{">=", p.floor()}, {"<", p.at(p.major, p.minor+1, 0)}}, nil
		}
	default: // "^"
		if p.n == 0 {
			return nil, nil
		}
		var upper string
		switch {
		case p.major > 0 || p.n == 1:
			upper = p.at(p.major+1, 0, 0)
		case p.minor > 0 || p.n == 2:
			upper = p.at(0, p.minor+1, 0)
		default:
			upper = p.at(0, 0, p.patch+1)
		}
		return []comparator{{">=", p.floor()}, {"<", upper}}, nil
	}
}

func parsePartial(s string) (partialVersion, bool, error) {
	var p partialVersion
	if s == "" {
		return p, false, fmt.Errorf("missing version")
	}
	s, _, _ = strings.Cut(s, "+")
	core, pre, hasPre := strings.Cut(s, "-")
	parts := strings.Split(core, ".")
	if len(parts) > 3 {
		return p, false, fmt.Errorf("invalid version %q", s)
	}

	wildcard := false
	nums := [3]int{}
	for i, part := range parts {
		if part == "*" || part == "x" || part == "X" {
			wildcard = true
			break
		}
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return p, false, fmt.Errorf("invalid version %q", s)
		}
		nums[i] = v
		p.n = i + 1
	}
	if hasPre {
		if p.n < 3 || pre == "" {
			return p, false, fmt.Errorf("invalid pre-release in %q", s)
		}
		p.pre = pre
	}
	p.major, p.minor, p.patch = nums[0], nums[1], nums[2]
	return p, wildcard, nil
}
