package planner

import (
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/zerr"
)

// CacheGroupPlanner partitions the module space into named, disjoint cache groups.
type CacheGroupPlanner struct {
	frameworkName   string
	templatePackage string
}

// NewCacheGroupPlanner creates a planner. The framework name is the chunk of the
// managed root itself; the template package gets a chunk separate from vendors.
func NewCacheGroupPlanner(frameworkName, templatePackage string) *CacheGroupPlanner {
	return &CacheGroupPlanner{
		frameworkName:   frameworkName,
		templatePackage: templatePackage,
	}
}

// Plan computes the rules for the managed root and the extra chunk and entry directories.
// Reserved paths (absolute, or relative to the managed root) are excluded from
// every rule containing them. Hints override the base priority per rule name.
// Rules come out as vendors, templates, framework, then extras in input order.
func (p *CacheGroupPlanner) Plan(
	managedRoot string,
	reserved []string,
	extra []domain.DirectorySpec,
	hints map[string]int,
) ([]domain.CacheGroupRule, error) {
	managedRoot = filepath.Clean(managedRoot)

	reservedAbs := make([]string, 0, len(reserved))
	for _, r := range reserved {
		if !filepath.IsAbs(r) {
			r = filepath.Join(managedRoot, filepath.FromSlash(r))
		}
		reservedAbs = appendUnique(reservedAbs, filepath.Clean(r))
	}

	dirs := make([]string, 0, len(extra))
	for _, spec := range extra {
		// The framework rule owns the managed root; a directory at or above it
		// would claim the same modules.
		if domain.IsWithin(spec.ResolvedPath, managedRoot) {
			return nil, zerr.With(
				zerr.Wrap(domain.ErrDirectoryOverlap, "directory contains the managed root: "+spec.ResolvedPath),
				"path", spec.ResolvedPath,
			)
		}
		dirs = appendUnique(dirs, spec.ResolvedPath)
	}

	rules := make([]domain.CacheGroupRule, 0, len(dirs)+3)
	rules = append(rules, p.vendorRules()...)

	taken := map[string]struct{}{
		domain.VendorsGroup:   {},
		domain.TemplatesGroup: {},
		p.frameworkName:       {},
	}

	frameworkPriority := domain.FrameworkPriority
	if hint, ok := hints[p.frameworkName]; ok {
		frameworkPriority = hint
	}
	rules = append(rules, domain.CacheGroupRule{
		Name:       p.frameworkName,
		PathPrefix: managedRoot,
		Exclusions: exclusionsUnder(managedRoot, reservedAbs, dirs),
		Priority:   frameworkPriority,
		AllChunks:  true,
		Scope:      domain.ScopePrefix,
	})

	for _, dir := range dirs {
		name := p.uniqueName(managedRoot, dir, taken)
		taken[name] = struct{}{}

		base := domain.DirectoryBasePriority
		if hint, ok := hints[name]; ok {
			base = hint
		}

		rules = append(rules, domain.CacheGroupRule{
			Name:       name,
			PathPrefix: dir,
			Exclusions: exclusionsUnder(dir, reservedAbs, dirs),
			Priority:   base + nestingDepth(dir, dirs),
			AllChunks:  true,
			Scope:      domain.ScopePrefix,
		})
	}

	return rules, nil
}

func (p *CacheGroupPlanner) vendorRules() []domain.CacheGroupRule {
	vendors := domain.CacheGroupRule{
		Name:       domain.VendorsGroup,
		PathPrefix: domain.VendorSegment,
		Priority:   domain.VendorsPriority,
		AllChunks:  true,
		Scope:      domain.ScopeSegment,
	}
	if p.templatePackage == "" {
		return []domain.CacheGroupRule{vendors}
	}

	vendors.Exclusions = []string{p.templatePackage}
	templates := domain.CacheGroupRule{
		Name:       domain.TemplatesGroup,
		PathPrefix: domain.VendorSegment + "/" + p.templatePackage,
		Priority:   domain.TemplatesPriority,
		AllChunks:  true,
		Scope:      domain.ScopeSegment,
	}
	return []domain.CacheGroupRule{vendors, templates}
}

// uniqueName derives a rule name from the directory's final segment.
// Colliding names are qualified with the directory's location, then suffixed
// with underscores until unique.
func (p *CacheGroupPlanner) uniqueName(managedRoot, dir string, taken map[string]struct{}) string {
	name := filepath.Base(dir)
	if _, clash := taken[name]; !clash {
		return name
	}

	rel := domain.RelSlash(managedRoot, dir)
	if domain.IsStrictlyWithin(managedRoot, dir) && strings.Contains(rel, "/") {
		name = strings.ReplaceAll(rel, "/", "_")
	} else {
		name = p.frameworkName + "_" + name
	}

	for {
		if _, clash := taken[name]; !clash {
			return name
		}
		name += "_"
	}
}

// exclusionsUnder lists every candidate strictly below prefix, relative to prefix.
func exclusionsUnder(prefix string, groups ...[]string) []string {
	var out []string
	for _, group := range groups {
		for _, candidate := range group {
			if domain.IsStrictlyWithin(prefix, candidate) {
				out = appendUnique(out, domain.RelSlash(prefix, candidate))
			}
		}
	}
	return out
}

// nestingDepth counts the directories of dirs that strictly contain dir.
func nestingDepth(dir string, dirs []string) int {
	depth := 0
	for _, other := range dirs {
		if domain.IsStrictlyWithin(other, dir) {
			depth++
		}
	}
	return depth
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
