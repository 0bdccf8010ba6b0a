// Package config provides the configuration loader for compplan.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/compplan/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a new Loader reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: NewOSFS()}
}

// Discover walks up from cwd until it finds a compplan.yaml.
func (l *Loader) Discover(cwd string) (string, error) {
	current, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, err.Error()), "cwd", cwd)
	}

	for {
		candidate := filepath.Join(current, domain.ConfigFileName)
		if info, err := l.FS.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, cwd), "cwd", cwd)
}

// Load reads the configuration file at path and returns the planner settings.
// The override hook is validated here, before any planning starts.
func (l *Loader) Load(path string) (*domain.Settings, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	var file File
	if err := l.readYAML(path, &file); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	settings, err := toSettings(configDir, &file)
	if err != nil {
		return nil, zerr.With(err, "config", path)
	}

	if err := l.applyOverride(configDir, file.Override, settings); err != nil {
		return nil, zerr.With(err, "config", path)
	}

	return settings, nil
}

func (l *Loader) readYAML(path string, target *File) error {
	data, err := l.FS.ReadFile(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	var keys map[string]any
	if err := yaml.Unmarshal(data, &keys); err == nil {
		for _, key := range slices.Sorted(maps.Keys(keys)) {
			if !slices.Contains(knownKeys, key) {
				l.Logger.Warn(fmt.Sprintf("config: unknown key %q in %s is ignored", key, path))
			}
		}
	}
	return nil
}

func toSettings(configDir string, file *File) (*domain.Settings, error) {
	mode, err := domain.ParseBuildMode(file.BuildMode)
	if err != nil {
		return nil, err
	}

	entryExtensions := file.EntryExtensions.Or(domain.DefaultEntryExtensions)

	s := &domain.Settings{
		ProcessRoot:      configDir,
		ManagedRoot:      resolvePath(configDir, orDefault(file.ManagedRoot, domain.DefaultManagedRoot)),
		OutputRoot:       resolvePath(configDir, orDefault(file.OutputRoot, domain.DefaultOutputRoot)),
		BuildMode:        mode,
		LibraryName:      orDefault(file.LibraryName, domain.DefaultLibraryName),
		Externals:        file.Externals,
		ChunkContentHash: file.ChunkContentHash.Or(domain.DefaultChunkContentHash),
		EntriesFilename:  domain.DefaultEntriesFilename,
		StatsFilename:    orDefault(file.StatsFilename, domain.DefaultStatsFilename),
		PlanFilename:     file.PlanFilename,
		ChunkDirs:        file.ChunkDirs.Value,
		EntryDirs:        file.EntryDirs.Value,
		EntryExtensions:  entryExtensions,
		Verbose:          domain.ParseBool(file.Verbose.Value),
		FrameworkChunk:   file.FrameworkChunk,
		TemplatePackage:  domain.DefaultTemplatePackage,
		ChunkPriorities:  file.ChunkPriorities,
		Ignore:           file.Ignore,
		ModuleRules:      file.ModuleRules,
	}

	if file.EntriesFilename != nil {
		s.EntriesFilename = *file.EntriesFilename
	}
	if file.TemplatePackage != nil {
		s.TemplatePackage = *file.TemplatePackage
	}

	s.ReservedSubfolders = file.ReservedSubfolders
	if s.ReservedSubfolders == nil {
		s.ReservedSubfolders = []string{domain.DefaultEntriesSubfolder}
	}

	if file.EntrySets == nil {
		s.EntrySets = []domain.EntrySetSpec{{
			Source:     domain.DefaultEntriesSubfolder,
			Extensions: domain.SplitList(entryExtensions),
		}}
	}
	for _, dto := range file.EntrySets {
		exts := dto.Extensions
		if len(exts) == 0 {
			exts = domain.SplitList(entryExtensions)
		}
		s.EntrySets = append(s.EntrySets, domain.EntrySetSpec{
			Source:     dto.Source,
			Extensions: exts,
			Target:     dto.Target,
		})
	}

	return s, nil
}

// applyOverride validates the override declaration. A file becomes a
// replacement plan; a command is left for the application layer to bind.
func (l *Loader) applyOverride(configDir string, dto *OverrideDTO, s *domain.Settings) error {
	if dto == nil {
		return nil
	}

	switch {
	case dto.File != "" && len(dto.Command) > 0:
		return zerr.Wrap(domain.ErrInvalidOverride, "override sets both file and command")
	case dto.File != "":
		plan, err := l.readPlanFile(resolvePath(configDir, dto.File))
		if err != nil {
			return err
		}
		s.Override = domain.ReplacementPlan{Plan: plan}
	case len(dto.Command) > 0:
		s.OverrideCommand = slices.Clone(dto.Command)
	default:
		return zerr.Wrap(domain.ErrInvalidOverride, "override sets neither file nor command")
	}
	return nil
}

// readPlanFile reads a replacement plan written as a JSON or YAML object.
// JSON documents keep their entry order; YAML entries come out sorted by name.
func (l *Loader) readPlanFile(path string) (*domain.Plan, error) {
	data, err := l.FS.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidOverride, err.Error()), "override_file", path)
	}

	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		var doc any
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidOverride, err.Error()), "override_file", path)
		}
		if trimmed, err = json.Marshal(doc); err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidOverride, err.Error()), "override_file", path)
		}
	}

	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, zerr.With(
			zerr.Wrap(domain.ErrInvalidOverride, "override file must contain an object"),
			"override_file", path,
		)
	}

	var plan domain.Plan
	if err := json.Unmarshal(trimmed, &plan); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidOverride, err.Error()), "override_file", path)
	}
	return &plan, nil
}

// resolvePath anchors a configured path at the config directory.
func resolvePath(configDir, configured string) string {
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(configDir, configured))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
