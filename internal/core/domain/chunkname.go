package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PlainChunkFilename is the chunk filename template without cache busting.
const PlainChunkFilename = "[name].js"

// ChunkFilenameKind tags the variants of the chunk filename policy.
type ChunkFilenameKind uint8

const (
	// ChunkPlain names chunks by their name only.
	ChunkPlain ChunkFilenameKind = iota
	// ChunkContentHash embeds a content hash of the given length.
	ChunkContentHash
	// ChunkVerbatim uses the user-supplied template as is.
	ChunkVerbatim
)

// ChunkFilename is the decided chunk filename policy.
type ChunkFilename struct {
	Kind       ChunkFilenameKind
	HashLength int
	Template   string
}

// String renders the bundler filename template.
func (c ChunkFilename) String() string {
	switch c.Kind {
	case ChunkContentHash:
		return fmt.Sprintf("[name].[contenthash:%d].js", c.HashLength)
	case ChunkVerbatim:
		return c.Template
	default:
		return PlainChunkFilename
	}
}

// ParseChunkFilename classifies a raw hash setting.
// Falsy values ("", "false" and zero) disable hashing, positive integers set
// the hash length. Anything else is kept as a verbatim template.
func ParseChunkFilename(setting string) ChunkFilename {
	trimmed := strings.TrimSpace(setting)

	switch strings.ToLower(trimmed) {
	case "", "0", "false":
		return ChunkFilename{Kind: ChunkPlain}
	}

	if isDigits(trimmed) {
		if n, err := strconv.Atoi(trimmed); err == nil {
			if n == 0 {
				return ChunkFilename{Kind: ChunkPlain}
			}
			return ChunkFilename{Kind: ChunkContentHash, HashLength: n}
		}
	}

	return ChunkFilename{Kind: ChunkVerbatim, Template: setting}
}

// DecideChunkFilename returns the chunk filename template for a raw hash setting.
func DecideChunkFilename(setting string) string {
	return ParseChunkFilename(setting).String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
