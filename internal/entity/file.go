package entity

import "sort"

// File is the ordered entity log of one translation unit.
//
// Both passes of the pipeline mutate it only through Append and TruncateFrom,
// which keep the entities sorted by source offset. A File is owned by a
// single pipeline invocation and must not be shared while it is written.
type File struct {
	// Path is the path of the main file of the unit.
	Path     string
	entities []Entity
	sealed   bool
}

// NewFile creates an empty File for the translation unit at path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Append records e. An entity positioned before already-recorded entities
// is placed ahead of them; entities with equal offsets keep insertion order.
func (f *File) Append(e Entity) {
	f.mustBeOpen()
	off := e.Pos().Offset
	n := len(f.entities)
	if n == 0 || f.entities[n-1].Pos().Offset <= off {
		f.entities = append(f.entities, e)
		return
	}
	i := sort.Search(n, func(i int) bool {
		return f.entities[i].Pos().Offset > off
	})
	f.entities = append(f.entities, nil)
	copy(f.entities[i+1:], f.entities[i:])
	f.entities[i] = e
}

// TruncateFrom removes the entity at index i and everything after it.
// An index at or past the end removes nothing.
func (f *File) TruncateFrom(i int) {
	f.mustBeOpen()
	if i < 0 {
		i = 0
	}
	if i >= len(f.entities) {
		return
	}
	for j := i; j < len(f.entities); j++ {
		f.entities[j] = nil
	}
	f.entities = f.entities[:i]
}

// Seal finalizes the File. Any later mutation panics.
func (f *File) Seal() { f.sealed = true }

// Sealed reports whether Seal was called.
func (f *File) Sealed() bool { return f.sealed }

// Len returns the number of entities.
func (f *File) Len() int { return len(f.entities) }

// At returns the entity at index i.
func (f *File) At(i int) Entity { return f.entities[i] }

// Entities returns a copy of the entities in source order.
func (f *File) Entities() []Entity {
	out := make([]Entity, len(f.entities))
	copy(out, f.entities)
	return out
}

// Index returns the index of the first entity named name, or -1.
func (f *File) Index(name string) int {
	for i, e := range f.entities {
		if e.Name() == name {
			return i
		}
	}
	return -1
}

// LastIndex returns the index of the last entity named name, or -1.
func (f *File) LastIndex(name string) int {
	for i := len(f.entities) - 1; i >= 0; i-- {
		if f.entities[i].Name() == name {
			return i
		}
	}
	return -1
}

// Functions returns the functions and member functions in source order.
func (f *File) Functions() []*Function {
	var out []*Function
	for _, e := range f.entities {
		switch fn := e.(type) {
		case *Function:
			out = append(out, fn)
		case *MemberFunction:
			out = append(out, &fn.Function)
		}
	}
	return out
}

func (f *File) mustBeOpen() {
	if f.sealed {
		panic("entity: mutation of sealed file " + f.Path)
	}
}
