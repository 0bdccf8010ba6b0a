package config

import (
	"strings"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// File represents the structure of the compplan.yaml configuration file.
type File struct {
	Version            string            `yaml:"version"`
	ManagedRoot        string            `yaml:"managedRoot"`
	OutputRoot         string            `yaml:"outputRoot"`
	BuildMode          string            `yaml:"buildMode"`
	LibraryName        string            `yaml:"libraryName"`
	Externals          map[string]string `yaml:"externals"`
	ChunkContentHash   RawValue          `yaml:"chunkContentHash"`
	EntriesFilename    *string           `yaml:"entriesFilename"`
	StatsFilename      string            `yaml:"statsFilename"`
	PlanFilename       string            `yaml:"planFilename"`
	ChunkDirs          RawValue          `yaml:"chunkDirs"`
	EntryDirs          RawValue          `yaml:"entryDirs"`
	EntryExtensions    RawValue          `yaml:"entryExtensions"`
	Verbose            RawValue          `yaml:"verbose"`
	EntrySets          []EntrySetDTO     `yaml:"entrySets"`
	ReservedSubfolders []string          `yaml:"reservedSubfolders"`
	FrameworkChunk     string            `yaml:"frameworkChunk"`
	TemplatePackage    *string           `yaml:"templatePackage"`
	ChunkPriorities    map[string]int    `yaml:"chunkPriorities"`
	Ignore             []string          `yaml:"ignore"`
	ModuleRules        []map[string]any  `yaml:"moduleRules"`
	Override           *OverrideDTO      `yaml:"override"`
}

// knownKeys lists every top-level key of File.
var knownKeys = []string{
	"version", "managedRoot", "outputRoot", "buildMode", "libraryName", "externals",
	"chunkContentHash", "entriesFilename", "statsFilename", "planFilename",
	"chunkDirs", "entryDirs", "entryExtensions", "verbose", "entrySets",
	"reservedSubfolders", "frameworkChunk", "templatePackage", "chunkPriorities",
	"ignore", "moduleRules", "override",
}

// EntrySetDTO represents one built-in entry set.
type EntrySetDTO struct {
	Source     string   `yaml:"source"`
	Extensions []string `yaml:"extensions"`
	Target     string   `yaml:"target"`
}

// OverrideDTO selects the override hook. Exactly one field must be set.
type OverrideDTO struct {
	File    string   `yaml:"file"`
	Command []string `yaml:"command"`
}

// RawValue keeps a scalar exactly as written. Sequences of scalars are joined
// with commas so lists and comma-separated strings are interchangeable.
type RawValue struct {
	Value string
	Set   bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *RawValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		r.Set = true
		if node.Tag == "!!null" {
			r.Value = ""
			return nil
		}
		r.Value = node.Value
		return nil
	case yaml.SequenceNode:
		parts := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return zerr.With(zerr.New("list items must be scalars"), "line", item.Line)
			}
			parts = append(parts, item.Value)
		}
		r.Set = true
		r.Value = strings.Join(parts, ",")
		return nil
	default:
		return zerr.With(zerr.New("expected a scalar or a list of scalars"), "line", node.Line)
	}
}

// Or returns the raw value, or def when the key was absent.
func (r RawValue) Or(def string) string {
	if !r.Set {
		return def
	}
	return r.Value
}
