package fs

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/compplan/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher fingerprints plans with XXHash.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Fingerprint computes a digest of the plan's entries, chunk policy and cache groups.
// Cache groups are hashed in name order so the digest does not depend on map iteration.
func (h *Hasher) Fingerprint(plan *domain.Plan) (string, error) {
	if plan == nil {
		return "", zerr.New("cannot fingerprint a nil plan")
	}

	hasher := xxhash.New()

	h.hashEntries(plan.Entry, hasher)

	_, _ = hasher.WriteString(plan.Output.ChunkFilename)
	_, _ = hasher.Write([]byte{0})

	if err := h.hashCacheGroups(plan.Optimization.SplitChunks.CacheGroups, hasher); err != nil {
		return "", err
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// hashEntries hashes name/path pairs in entry order.
func (h *Hasher) hashEntries(entries *domain.EntryMap, hasher *xxhash.Digest) {
	if entries != nil {
		for name, path := range entries.All() {
			_, _ = hasher.WriteString(name)
			_, _ = hasher.Write([]byte{'='})
			_, _ = hasher.WriteString(path)
			_, _ = hasher.Write([]byte{0})
		}
	}
	_, _ = hasher.Write([]byte{0}) // Section separator
}

func (h *Hasher) hashCacheGroups(groups map[string]domain.CacheGroup, hasher *xxhash.Digest) error {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		group := groups[name]
		_, _ = hasher.WriteString(name)
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.WriteString(group.Test)
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.WriteString(group.Chunks)
		_, _ = hasher.Write([]byte{0})
		if err := binary.Write(hasher, binary.LittleEndian, int64(group.Priority)); err != nil {
			return zerr.Wrap(err, "failed to write priority to digest")
		}
	}
	_, _ = hasher.Write([]byte{0})
	return nil
}
