package domain

import (
	"bytes"
	"encoding/json"
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

var errEntryMapNotObject = zerr.New("entry map must be a JSON object")

// EntrySet describes one source tree scanned for entries.
type EntrySet struct {
	// SourceRoot is the absolute directory that is walked.
	SourceRoot string
	// Extensions holds the accepted file extensions, without leading dot.
	Extensions map[string]struct{}
	// OutputSubdir optionally prefixes every entry name of the set.
	OutputSubdir string
}

// NewEntrySet creates an EntrySet accepting the given extensions.
// Extensions are normalized: surrounding whitespace and a leading dot are dropped.
func NewEntrySet(sourceRoot string, extensions []string, outputSubdir string) EntrySet {
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			exts[ext] = struct{}{}
		}
	}
	return EntrySet{
		SourceRoot:   sourceRoot,
		Extensions:   exts,
		OutputSubdir: strings.Trim(outputSubdir, "/"),
	}
}

// Accepts reports whether the extension (without dot) is selected by the set.
func (s EntrySet) Accepts(ext string) bool {
	_, ok := s.Extensions[ext]
	return ok
}

// EntryMap is an insertion-ordered mapping from entry name to absolute source file.
type EntryMap struct {
	names []string
	paths map[string]string
}

// NewEntryMap creates an empty EntryMap.
func NewEntryMap() *EntryMap {
	return &EntryMap{paths: make(map[string]string)}
}

// Add inserts a new entry. It returns the path already registered under the
// name and false when the name is taken; the map is left unchanged in that case.
func (m *EntryMap) Add(name, path string) (string, bool) {
	if existing, ok := m.paths[name]; ok {
		return existing, false
	}
	m.names = append(m.names, name)
	m.paths[name] = path
	return "", true
}

// Get returns the source path of an entry.
func (m *EntryMap) Get(name string) (string, bool) {
	p, ok := m.paths[name]
	return p, ok
}

// Len returns the number of entries.
func (m *EntryMap) Len() int {
	return len(m.names)
}

// Names returns the entry names in insertion order.
func (m *EntryMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// All yields name/path pairs in insertion order.
func (m *EntryMap) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, name := range m.names {
			if !yield(name, m.paths[name]) {
				return
			}
		}
	}
}

// MarshalJSON encodes the map as a JSON object preserving insertion order.
func (m *EntryMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.paths[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the document.
func (m *EntryMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errEntryMapNotObject
	}

	m.names = nil
	m.paths = make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var path string
		if err := dec.Decode(&path); err != nil {
			return err
		}
		m.Add(name, path)
	}
	_, err = dec.Token()
	return err
}
