package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// BuildMode toggles development-only plan behavior.
type BuildMode string

const (
	// ModeProduction produces compact output without source maps.
	ModeProduction BuildMode = "production"
	// ModeDevelopment enables source maps.
	ModeDevelopment BuildMode = "development"
)

// ParseBuildMode parses a raw build mode. Empty input means production.
func ParseBuildMode(raw string) (BuildMode, error) {
	switch BuildMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeProduction:
		return ModeProduction, nil
	case ModeDevelopment:
		return ModeDevelopment, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidBuildMode, raw), "build_mode", raw)
	}
}

// IsDevelopment reports whether the mode is development.
func (m BuildMode) IsDevelopment() bool {
	return m == ModeDevelopment
}

// ParseBool interprets a boolean-like raw string. Only "true" (any case) is true.
func ParseBool(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}

// SplitList splits a comma-separated raw list, trimming whitespace and quote
// characters and dropping empty tokens. Order is kept, duplicates are not removed.
func SplitList(raw string) []string {
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.Trim(strings.TrimSpace(tok), "\"'`")
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// EntrySetSpec is a configured entry set before its source root is validated.
type EntrySetSpec struct {
	Source     string
	Extensions []string
	Target     string
}

// Settings is the complete planner input.
// Paths are absolute; list-valued user declarations stay raw until planning.
type Settings struct {
	// ProcessRoot anchors every relative path of the configuration.
	ProcessRoot string
	ManagedRoot string
	OutputRoot  string
	BuildMode   BuildMode
	LibraryName string
	Externals   map[string]string

	// ChunkContentHash is the raw chunk hash setting.
	ChunkContentHash string
	EntriesFilename  string
	StatsFilename    string
	PlanFilename     string

	// ChunkDirs and EntryDirs are raw comma-separated directory declarations.
	ChunkDirs       string
	EntryDirs       string
	EntryExtensions string
	Verbose         bool

	EntrySets          []EntrySetSpec
	ReservedSubfolders []string
	FrameworkChunk     string
	TemplatePackage    string
	ChunkPriorities    map[string]int
	Ignore             []string
	ModuleRules        []map[string]any

	// Env is handed to the override transform.
	Env map[string]string
	// Override optionally post-processes the computed plan.
	Override Override
	// OverrideCommand is the argv of a command-backed override, bound by the application layer.
	OverrideCommand []string
}
