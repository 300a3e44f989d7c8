package geolookup

import (
	"errors"
)

// ErrRegistryIncomplete is returned when an index build is attempted before
// the registry has been sealed.
var ErrRegistryIncomplete = errors.New("registry is not sealed; definitional records still pending")

// IndexEntry is one searchable place. Entries are immutable once built.
type IndexEntry struct {
	DisplayPath string
	SearchKey   string
	Kind        Kind
	Name        string
	Record      Record
}

// Index is an ordered, read-only collection of entries. It is safe for
// concurrent use by any number of readers.
type Index struct {
	entries []IndexEntry
}

// BuildIndex resolves every record with a non-empty name into an entry.
// Batches are consumed in order and each batch in source order, so the
// index order is deterministic. reg must be sealed.
func BuildIndex(batches [][]Record, reg *Registry) (*Index, error) {
	if !reg.Sealed() {
		return nil, ErrRegistryIncomplete
	}

	n := 0
	for _, b := range batches {
		n += len(b)
	}
	idx := &Index{entries: make([]IndexEntry, 0, n)}
	for _, b := range batches {
		for _, rec := range b {
			name := rec.DisplayName()
			if name == "" {
				continue
			}
			idx.entries = append(idx.entries, IndexEntry{
				DisplayPath: Resolve(rec, reg, false),
				SearchKey:   Resolve(rec, reg, true),
				Kind:        rec.Kind(),
				Name:        name,
				Record:      rec,
			})
		}
	}
	return idx, nil
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Entries returns a copy of the entries in index order.
func (idx *Index) Entries() []IndexEntry {
	if idx == nil {
		return nil
	}
	out := make([]IndexEntry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// CountByKind returns the number of entries per kind.
func (idx *Index) CountByKind() map[Kind]int {
	counts := make(map[Kind]int, 4)
	if idx == nil {
		return counts
	}
	for _, e := range idx.entries {
		counts[e.Kind]++
	}
	return counts
}
