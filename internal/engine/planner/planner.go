// Package planner computes component build plans from planner settings.
package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/compplan/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	chunkDirsLabel = "chunkDirs"
	entryDirsLabel = "entryDirs"
	libraryType    = "var"
	sourceMap      = "source-map"
)

// Planner runs full planning passes. It holds no state between passes.
type Planner struct {
	walker   ports.Walker
	manifest ports.ManifestWriter
	hasher   ports.Hasher
	tracer   ports.Tracer
	logger   ports.Logger
}

// New creates a new Planner.
func New(
	walker ports.Walker,
	manifest ports.ManifestWriter,
	hasher ports.Hasher,
	tracer ports.Tracer,
	logger ports.Logger,
) *Planner {
	return &Planner{
		walker:   walker,
		manifest: manifest,
		hasher:   hasher,
		tracer:   tracer,
		logger:   logger,
	}
}

// Plan computes a complete plan or fails without producing a partial one.
func (p *Planner) Plan(ctx context.Context, s *domain.Settings) (plan *domain.Plan, err error) {
	ctx, span := p.tracer.Start(ctx, "plan")
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	// The override is checked before anything touches the filesystem.
	if err := domain.ValidateOverride(s.Override); err != nil {
		return nil, err
	}

	managedRoot, err := canonicalRoot(s.ManagedRoot)
	if err != nil {
		return nil, err
	}
	span.SetAttribute("managed_root", managedRoot)

	chunkDirs, entryDirs, err := p.resolveDirectories(ctx, managedRoot, s)
	if err != nil {
		return nil, err
	}

	entries, err := p.enumerate(ctx, managedRoot, entryDirs, s)
	if err != nil {
		return nil, err
	}
	span.SetAttribute("entries", entries.Len())

	rules, err := p.cacheGroups(ctx, managedRoot, chunkDirs, entryDirs, s)
	if err != nil {
		return nil, err
	}
	span.SetAttribute("cache_groups", len(rules))

	plan = assemble(s, entries, rules)

	plan, err = p.override(ctx, s, plan)
	if err != nil {
		return nil, err
	}

	fingerprint, err := p.hasher.Fingerprint(plan)
	if err != nil {
		return nil, err
	}
	plan.Fingerprint = fingerprint

	return plan, nil
}

func (p *Planner) resolveDirectories(
	ctx context.Context,
	managedRoot string,
	s *domain.Settings,
) (chunkDirs, entryDirs []domain.DirectorySpec, err error) {
	_, span := p.tracer.Start(ctx, "plan.resolve")
	defer span.End()

	resolver := NewDirectoryResolver(managedRoot, s.Verbose, p.logger)

	chunkDirs, err = resolver.Normalize(s.ChunkDirs, chunkDirsLabel)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	entryDirs, err = resolver.Normalize(s.EntryDirs, entryDirsLabel)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	if err := checkOverlap(chunkDirs, entryDirs); err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	p.warnReentrant(managedRoot, chunkDirs, entryDirs)

	return chunkDirs, entryDirs, nil
}

func (p *Planner) enumerate(
	ctx context.Context,
	managedRoot string,
	entryDirs []domain.DirectorySpec,
	s *domain.Settings,
) (*domain.EntryMap, error) {
	ctx, span := p.tracer.Start(ctx, "plan.enumerate")
	defer span.End()

	ignores := s.Ignore
	if ignores == nil {
		ignores = domain.DefaultIgnorePatterns()
	}

	sets := entrySets(managedRoot, entryDirs, s)
	enumerator := NewEntrySetEnumerator(p.walker, p.manifest, p.logger, ignores)

	entries, err := enumerator.Enumerate(ctx, sets, s.OutputRoot, s.EntriesFilename)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return entries, nil
}

func (p *Planner) cacheGroups(
	ctx context.Context,
	managedRoot string,
	chunkDirs, entryDirs []domain.DirectorySpec,
	s *domain.Settings,
) ([]domain.CacheGroupRule, error) {
	_, span := p.tracer.Start(ctx, "plan.cachegroups")
	defer span.End()

	reserved := make([]string, 0, len(s.ReservedSubfolders)+len(s.EntrySets))
	reserved = append(reserved, s.ReservedSubfolders...)
	for _, set := range s.EntrySets {
		reserved = append(reserved, absUnder(managedRoot, set.Source))
	}

	// Chunk directories come first so they win name collisions.
	managed := make([]domain.DirectorySpec, 0, len(chunkDirs)+len(entryDirs))
	managed = append(managed, chunkDirs...)
	managed = append(managed, entryDirs...)

	framework := s.FrameworkChunk
	if framework == "" {
		framework = filepath.Base(managedRoot)
	}

	rules, err := NewCacheGroupPlanner(framework, s.TemplatePackage).
		Plan(managedRoot, reserved, managed, s.ChunkPriorities)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.Verbose {
		for _, rule := range rules {
			p.logger.Info(fmt.Sprintf("cachegroup %s: %s (priority %d)",
				rule.Name, rule.Compile().Pattern(), rule.Priority))
		}
	}
	return rules, nil
}

func (p *Planner) override(ctx context.Context, s *domain.Settings, plan *domain.Plan) (*domain.Plan, error) {
	if s.Override == nil {
		return plan, nil
	}

	ctx, span := p.tracer.Start(ctx, "plan.override")
	defer span.End()

	out, err := domain.ApplyOverride(ctx, s.Override, s.Env, plan)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}

func (p *Planner) warnReentrant(managedRoot string, groups ...[]domain.DirectorySpec) {
	var reentrant []string
	for _, group := range groups {
		for _, spec := range group {
			if spec.ManagedTreeReentrant {
				reentrant = append(reentrant, fmt.Sprintf("%s (%s)", spec.OriginalText, spec.ResolvedPath))
			}
		}
	}
	if len(reentrant) == 0 {
		return
	}
	p.logger.Warn(fmt.Sprintf(
		"dir.reentrant: symlinked directories resolve back into %s and may collide with its automatic chunking: %s",
		managedRoot, strings.Join(reentrant, ", "),
	))
}

// canonicalRoot resolves the managed root to an absolute, symlink-free directory.
func canonicalRoot(root string) (string, error) {
	if root == "" {
		return "", domain.ErrMissingManagedRoot
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrManagedRootInvalid, err.Error()), "path", root)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrManagedRootInvalid, err.Error()), "path", root)
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrManagedRootInvalid, err.Error()), "path", root)
	}
	if !info.IsDir() {
		return "", zerr.With(zerr.Wrap(domain.ErrManagedRootInvalid, canonical), "path", root)
	}
	return canonical, nil
}

// checkOverlap fails when a directory is declared both as chunk and entry directory.
func checkOverlap(chunkDirs, entryDirs []domain.DirectorySpec) error {
	chunks := make(map[string]struct{}, len(chunkDirs))
	for _, d := range chunkDirs {
		chunks[d.ResolvedPath] = struct{}{}
	}

	var overlap []string
	for _, d := range entryDirs {
		if _, ok := chunks[d.ResolvedPath]; ok {
			overlap = append(overlap, d.ResolvedPath)
		}
	}
	if len(overlap) == 0 {
		return nil
	}
	return zerr.With(
		zerr.Wrap(domain.ErrDirectoryOverlap, strings.Join(overlap, ", ")),
		"paths", overlap,
	)
}

// entrySets returns the configured sets followed by one set per extra entry directory.
func entrySets(managedRoot string, entryDirs []domain.DirectorySpec, s *domain.Settings) []domain.EntrySet {
	sets := make([]domain.EntrySet, 0, len(s.EntrySets)+len(entryDirs))
	for _, spec := range s.EntrySets {
		sets = append(sets, domain.NewEntrySet(absUnder(managedRoot, spec.Source), spec.Extensions, spec.Target))
	}

	extensions := domain.SplitList(s.EntryExtensions)
	for _, dir := range entryDirs {
		subdir := filepath.Base(dir.ResolvedPath)
		if domain.IsStrictlyWithin(managedRoot, dir.ResolvedPath) {
			subdir = domain.RelSlash(managedRoot, dir.ResolvedPath)
		}
		sets = append(sets, domain.NewEntrySet(dir.ResolvedPath, extensions, subdir))
	}
	return sets
}

func assemble(s *domain.Settings, entries *domain.EntryMap, rules []domain.CacheGroupRule) *domain.Plan {
	mode := s.BuildMode
	if mode == "" {
		mode = domain.ModeProduction
	}

	var devtool any = false
	if mode.IsDevelopment() {
		devtool = sourceMap
	}

	moduleRules := s.ModuleRules
	if moduleRules == nil {
		moduleRules = domain.DefaultModuleRules(mode)
	}

	externals := s.Externals
	if externals == nil {
		externals = map[string]string{}
	}

	groups := make(map[string]domain.CacheGroup, len(rules))
	for _, rule := range rules {
		groups[rule.Name] = domain.NewCacheGroup(rule)
	}

	return &domain.Plan{
		Mode:  mode,
		Entry: entries,
		Output: domain.Output{
			Path:          s.OutputRoot,
			Filename:      domain.PlainChunkFilename,
			ChunkFilename: domain.DecideChunkFilename(s.ChunkContentHash),
			Library: domain.Library{
				Name: []string{s.LibraryName, "[name]"},
				Type: libraryType,
			},
		},
		Devtool:   devtool,
		Resolve:   domain.Resolve{Extensions: domain.DefaultResolveExtensions()},
		Module:    domain.ModuleConfig{Rules: moduleRules},
		Externals: externals,
		Optimization: domain.Optimization{
			SplitChunks: domain.SplitChunks{CacheGroups: groups},
		},
		Stats: domain.NewStatsReporting(s.StatsFilename),
		Rules: rules,
	}
}

func absUnder(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, filepath.FromSlash(path))
}
