package form

import (
	"iter"
	"slices"
)

// FileMap is a multi-value map from field name to the ordered list of files
// submitted under that name. Keys are case-sensitive; insertion order of
// both keys and values is preserved, and the first file for a name is its
// primary file.
//
// Accessors hand out copies of the value slices, so a FileMap obtained from
// a request adapter cannot be used to mutate the adapter's state.
type FileMap struct {
	names []string
	files map[string][]File
}

// NewFileMap returns an empty FileMap.
func NewFileMap() *FileMap {
	return &FileMap{files: make(map[string][]File)}
}

// Add appends f to the list of files for name, registering the name on
// first use.
func (m *FileMap) Add(name string, f File) {
	if _, ok := m.files[name]; !ok {
		m.names = append(m.names, name)
	}
	m.files[name] = append(m.files[name], f)
}

// First returns the primary (first submitted) file for name, or nil.
func (m *FileMap) First(name string) File {
	fs := m.files[name]
	if len(fs) == 0 {
		return nil
	}
	return fs[0]
}

// Get returns the full ordered list of files for name. The list is empty,
// never nil, when the name is absent.
func (m *FileMap) Get(name string) []File {
	fs, ok := m.files[name]
	if !ok {
		return []File{}
	}
	return slices.Clone(fs)
}

// Names yields the field names in insertion order. The sequence is finite
// and can be ranged over any number of times.
func (m *FileMap) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range m.names {
			if !yield(name) {
				return
			}
		}
	}
}

// Len returns the number of distinct field names.
func (m *FileMap) Len() int { return len(m.names) }

// SingleValueMap collapses the multimap to one entry per name, keeping each
// name's primary file.
func (m *FileMap) SingleValueMap() map[string]File {
	out := make(map[string]File, len(m.names))
	for name, fs := range m.files {
		if len(fs) > 0 {
			out[name] = fs[0]
		}
	}
	return out
}

// Clone returns a deep copy of the map structure. The File values themselves
// are shared; they are read-only.
func (m *FileMap) Clone() *FileMap {
	c := &FileMap{
		names: slices.Clone(m.names),
		files: make(map[string][]File, len(m.files)),
	}
	for name, fs := range m.files {
		c.files[name] = slices.Clone(fs)
	}
	return c
}
