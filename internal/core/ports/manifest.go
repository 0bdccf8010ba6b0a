package ports

// ManifestWriter defines the interface for persisting planner outputs.
//
//go:generate mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks
type ManifestWriter interface {
	// WriteJSON encodes v as indented JSON and atomically replaces the file at path.
	WriteJSON(path string, v any) error
}
