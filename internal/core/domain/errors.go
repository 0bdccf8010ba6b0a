package domain

import "go.trai.ch/zerr"

var (
	// ErrBrokenSymlink is returned when a declared directory resolves through a symlink
	// chain whose target does not exist.
	ErrBrokenSymlink = zerr.New("symlink chain points to a non-existent target")

	// ErrSymlinkCycle is returned when a symlink chain revisits one of its own hops.
	ErrSymlinkCycle = zerr.New("symlink cycle detected")

	// ErrNotADirectory is returned when a declared directory resolves to something that is not a directory.
	ErrNotADirectory = zerr.New("declared path is not a directory")

	// ErrDirectoryStatFailed is returned when a declared directory exists but cannot be inspected.
	ErrDirectoryStatFailed = zerr.New("failed to inspect declared directory")

	// ErrDirectoryOverlap is returned when the same directory is declared both as chunk and entry directory.
	ErrDirectoryOverlap = zerr.New("directories declared both as chunk and entry directories")

	// ErrDuplicateEntryName is returned when two source files map to the same entry name.
	ErrDuplicateEntryName = zerr.New("duplicate entry name")

	// ErrEntryWalkFailed is returned when an entry source tree cannot be walked.
	ErrEntryWalkFailed = zerr.New("failed to walk entry source tree")

	// ErrInvalidIgnorePattern is returned when an ignore glob cannot be compiled.
	ErrInvalidIgnorePattern = zerr.New("invalid ignore pattern")

	// ErrInvalidOverride is returned when the override hook is neither a replacement plan nor a transform.
	ErrInvalidOverride = zerr.New("override must be either a replacement plan or a transform function")

	// ErrOverrideFailed is returned when the override transform fails.
	ErrOverrideFailed = zerr.New("override transform failed")

	// ErrInvalidBuildMode is returned when the build mode is neither production nor development.
	ErrInvalidBuildMode = zerr.New("invalid build mode, expected 'production' or 'development'")

	// ErrMissingManagedRoot is returned when no managed root is configured.
	ErrMissingManagedRoot = zerr.New("managed root is not configured")

	// ErrManagedRootInvalid is returned when the managed root cannot be resolved to a directory.
	ErrManagedRootInvalid = zerr.New("managed root is not an accessible directory")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when the config file cannot be found.
	ErrConfigNotFound = zerr.New("could not find compplan config file")

	// ErrManifestWriteFailed is returned when a manifest or plan file cannot be written.
	ErrManifestWriteFailed = zerr.New("failed to write manifest")

	// ErrManifestMarshalFailed is returned when a manifest cannot be encoded.
	ErrManifestMarshalFailed = zerr.New("failed to marshal manifest")

	// ErrPlanningFailed is returned when a planning pass aborts.
	ErrPlanningFailed = zerr.New("planning failed")

	// ErrInvalidEnvEntry is returned when a command-line environment entry is not key=value.
	ErrInvalidEnvEntry = zerr.New("invalid environment entry, expected key=value")

	// ErrWatchFailed is returned when the watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to start watcher")
)
