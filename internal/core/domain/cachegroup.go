package domain

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

const (
	// VendorsGroup is the reserved name of the third-party dependency chunk.
	VendorsGroup = "vendors"
	// TemplatesGroup is the reserved name of the template-provider chunk.
	TemplatesGroup = "templates"

	// VendorsPriority is the priority of the vendors rule.
	VendorsPriority = 100
	// TemplatesPriority is the priority of the templates rule.
	TemplatesPriority = 99
	// FrameworkPriority is the default priority of the managed-root rule.
	FrameworkPriority = 1
	// DirectoryBasePriority is the default priority of an extra directory rule before nesting.
	DirectoryBasePriority = 2
)

// MatchScope tells how a rule's PathPrefix is anchored.
type MatchScope uint8

const (
	// ScopePrefix anchors PathPrefix as an absolute directory prefix.
	ScopePrefix MatchScope = iota
	// ScopeSegment matches PathPrefix as a path fragment starting at any segment boundary.
	ScopeSegment
)

// CacheGroupRule is one partition of the module space into a named chunk.
type CacheGroupRule struct {
	Name       string
	PathPrefix string
	// Exclusions are slash-separated paths relative to PathPrefix that the rule must not match.
	Exclusions []string
	Priority   int
	// AllChunks applies the rule to initial and async chunks alike.
	AllChunks bool
	Scope     MatchScope
}

// Excludes reports whether rel (relative to the prefix) is listed as an exclusion.
func (r CacheGroupRule) Excludes(rel string) bool {
	return slices.Contains(r.Exclusions, rel)
}

// Predicate is the compiled form of a CacheGroupRule.
type Predicate struct {
	prefix     []string
	exclusions [][]string
	scope      MatchScope
	unc        bool
}

// Compile turns the rule into a Predicate.
func (r CacheGroupRule) Compile() Predicate {
	p := Predicate{
		prefix: splitPath(r.PathPrefix),
		scope:  r.Scope,
		unc:    isUNC(r.PathPrefix),
	}
	for _, ex := range r.Exclusions {
		p.exclusions = append(p.exclusions, splitPath(ex))
	}
	return p
}

// Match reports whether the module at path belongs to the rule.
// A path matches when it lies under the prefix and not under any excluded subpath.
func (p Predicate) Match(path string) bool {
	segs := splitPath(path)
	if len(p.prefix) == 0 {
		return false
	}

	switch p.scope {
	case ScopeSegment:
		for i := 0; i+len(p.prefix) <= len(segs); i++ {
			if hasSegments(segs[i:], p.prefix) && !p.excluded(segs[i+len(p.prefix):]) {
				return true
			}
		}
		return false
	default:
		if !filepath.IsAbs(path) || !hasSegments(segs, p.prefix) {
			return false
		}
		return !p.excluded(segs[len(p.prefix):])
	}
}

func (p Predicate) excluded(rest []string) bool {
	for _, ex := range p.exclusions {
		if hasSegments(rest, ex) {
			return true
		}
	}
	return false
}

// Pattern renders the predicate as a JavaScript regular expression source.
// Every path fragment is escaped; separators match both slash styles.
// Prefix rules are anchored at the root, a drive letter or a UNC host.
func (p Predicate) Pattern() string {
	var b strings.Builder

	switch {
	case p.scope != ScopePrefix:
		b.WriteString(`[\\/]`)
	case p.unc:
		b.WriteString(`^[\\/]{2}`)
	case len(p.prefix) > 0 && isDriveLetter(p.prefix[0]):
		b.WriteString("^")
	default:
		b.WriteString(`^[\\/]`)
	}
	b.WriteString(joinQuoted(p.prefix))
	b.WriteString(`[\\/]`)

	if len(p.exclusions) > 0 {
		alts := make([]string, 0, len(p.exclusions))
		for _, ex := range p.exclusions {
			alts = append(alts, joinQuoted(ex))
		}
		b.WriteString("(?!(?:")
		b.WriteString(strings.Join(alts, "|"))
		b.WriteString(`)(?:[\\/]|$))`)
	}

	return b.String()
}

func joinQuoted(segs []string) string {
	quoted := make([]string, len(segs))
	for i, s := range segs {
		quoted[i] = regexp.QuoteMeta(s)
	}
	return strings.Join(quoted, `[\\/]`)
}

func hasSegments(segs, prefix []string) bool {
	if len(prefix) > len(segs) {
		return false
	}
	for i := range prefix {
		if segs[i] != prefix[i] {
			return false
		}
	}
	return true
}

func isDriveLetter(seg string) bool {
	if len(seg) != 2 || seg[1] != ':' {
		return false
	}
	c := seg[0] | 0x20
	return c >= 'a' && c <= 'z'
}

func isUNC(p string) bool {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "///")
}

func splitPath(p string) []string {
	p = strings.ReplaceAll(p, `\`, "/")
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}
