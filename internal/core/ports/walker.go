package ports

import "iter"

// Walker defines the interface for enumerating files of a source tree.
//
//go:generate mockgen -source=walker.go -destination=mocks/mock_walker.go -package=mocks
type Walker interface {
	// WalkFiles yields the absolute paths of regular files under root in lexical order.
	// Paths matching an ignore pattern are skipped, symlinked directories are not descended.
	// The error sequence value is non-nil when the walk aborts.
	WalkFiles(root string, ignores []string) iter.Seq2[string, error]
}
