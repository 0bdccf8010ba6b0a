package domain

import "path/filepath"

const (
	// ConfigFileName is the name of the planner configuration file.
	ConfigFileName = "compplan.yaml"

	// DefaultManagedRoot is the managed component tree, relative to the config file.
	DefaultManagedRoot = "src/main/resources/react4xp"

	// DefaultOutputRoot is where computed assets are written, relative to the config file.
	DefaultOutputRoot = "build/resources/main/assets/react4xp"

	// DefaultEntriesSubfolder is the framework-reserved entry folder inside the managed root.
	DefaultEntriesSubfolder = "_entries"

	// DefaultEntriesFilename is the name of the entry manifest.
	DefaultEntriesFilename = "entries.json"

	// DefaultStatsFilename is the name of the bundler stats file.
	DefaultStatsFilename = "stats.components.json"

	// DefaultLibraryName is the global export namespace of produced bundles.
	DefaultLibraryName = "React4xp"

	// DefaultTemplatePackage is the third-party package that gets its own templates chunk.
	DefaultTemplatePackage = "react4xp-templates"

	// DefaultChunkContentHash is the default content hash length of chunk filenames.
	DefaultChunkContentHash = "9"

	// DefaultEntryExtensions lists the extensions considered in user entry directories.
	DefaultEntryExtensions = "jsx,js,es6"

	// VendorSegment is the path segment under which third-party dependencies live.
	VendorSegment = "node_modules"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultIgnorePatterns are skipped while enumerating entry source trees.
func DefaultIgnorePatterns() []string {
	return []string{VendorSegment, ".*"}
}

// DefaultResolveExtensions are the module extensions the bundler resolves.
func DefaultResolveExtensions() []string {
	return []string{".es6", ".js", ".jsx", ".less"}
}

// DefaultEntriesPath returns the default entry folder for a managed root.
func DefaultEntriesPath(managedRoot string) string {
	return filepath.Join(managedRoot, DefaultEntriesSubfolder)
}
