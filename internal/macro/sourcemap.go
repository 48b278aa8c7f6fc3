package macro

import (
	"sort"
	"strings"
)

// Segment maps a range of the output back to the source it came from.
type Segment struct {
	// Out is the start of the segment in the output.
	Out int
	// Len is the length of the segment in the output.
	Len int
	// File is the origin file, empty for text the engine synthesized.
	File string
	// SrcStart and SrcEnd bound the origin range in File.
	SrcStart, SrcEnd int
	// Linear is set when the output is a verbatim copy of the origin range.
	// Otherwise the segment is a macro expansion of the origin range.
	Linear bool
}

// SourceMap maps offsets in the preprocessed text back to the files that
// were read.
type SourceMap struct {
	segments []Segment
	sources  map[string]*source
}

// Segments returns the segments in output order.
func (m *SourceMap) Segments() []Segment {
	return m.segments
}

func (m *SourceMap) find(off int) (Segment, bool) {
	i := sort.Search(len(m.segments), func(i int) bool {
		s := m.segments[i]
		return s.Out+s.Len > off
	})
	if i == len(m.segments) || m.segments[i].Out > off {
		return Segment{}, false
	}
	return m.segments[i], true
}

// Locate maps an output offset to its origin. For end offsets (exclusive
// ends of ranges) pass end=true so that an offset that closes a macro
// expansion maps to the end of the invocation.
func (m *SourceMap) Locate(off int, end bool) (file string, srcOff int, ok bool) {
	probe := off
	if end {
		probe = off - 1
	}
	seg, ok := m.find(probe)
	if !ok || seg.File == "" {
		return "", 0, false
	}
	switch {
	case seg.Linear && end:
		return seg.File, seg.SrcStart + (probe - seg.Out) + 1, true
	case seg.Linear:
		return seg.File, seg.SrcStart + (probe - seg.Out), true
	case end:
		return seg.File, seg.SrcEnd, true
	default:
		return seg.File, seg.SrcStart, true
	}
}

// Text returns the original text of file between start and end.
func (m *SourceMap) Text(file string, start, end int) (string, bool) {
	src, ok := m.sources[file]
	if !ok || start < 0 || end > len(src.text) || start > end {
		return "", false
	}
	return string(src.text[start:end]), true
}

// LineCol returns the 1-based line and column of an offset in file.
func (m *SourceMap) LineCol(file string, off int) (uint32, uint32, bool) {
	src, ok := m.sources[file]
	if !ok {
		return 0, 0, false
	}
	line, col := src.lineCol(off)
	return line, col, true
}

// Files returns the paths of every file that was read.
func (m *SourceMap) Files() []string {
	out := make([]string, 0, len(m.sources))
	for p := range m.sources {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// writer accumulates the output text and its source map.
type writer struct {
	sb   strings.Builder
	smap *SourceMap
	last byte
	// pendingNewlines are line breaks swallowed by a multi-line macro
	// invocation, written with the next line break.
	pendingNewlines int
}

func newWriter() *writer {
	return &writer{smap: &SourceMap{sources: map[string]*source{}}}
}

func (w *writer) add(seg Segment) {
	if seg.Len == 0 {
		return
	}
	if n := len(w.smap.segments); n > 0 {
		prev := &w.smap.segments[n-1]
		if prev.File == seg.File && prev.Linear == seg.Linear && prev.Out+prev.Len == seg.Out {
			switch {
			case seg.Linear && prev.SrcEnd == seg.SrcStart:
				prev.Len += seg.Len
				prev.SrcEnd = seg.SrcEnd
				return
			case !seg.Linear && prev.SrcStart == seg.SrcStart && prev.SrcEnd == seg.SrcEnd:
				prev.Len += seg.Len
				return
			}
		}
	}
	w.smap.segments = append(w.smap.segments, seg)
}

func (w *writer) raw(s string) {
	if s == "" {
		return
	}
	w.sb.WriteString(s)
	w.last = s[len(s)-1]
}

// source writes a token copied verbatim from a file.
func (w *writer) source(t token) {
	if t.kind == Newline {
		w.flushNewlines()
	}
	out := w.sb.Len()
	w.raw(t.text)
	w.add(Segment{Out: out, Len: len(t.text), File: t.src.path, SrcStart: t.off, SrcEnd: t.end, Linear: true})
}

// expanded writes a token produced by macro expansion. A space is inserted
// where the token was preceded by whitespace or where it would otherwise
// merge with the previous token.
func (w *writer) expanded(t token) {
	if t.text == "" {
		return
	}
	site := t.origin()
	if w.sb.Len() > 0 && !isSpaceByte(w.last) && (t.space || wouldMerge(w.last, t.text[0])) {
		out := w.sb.Len()
		w.raw(" ")
		w.add(Segment{Out: out, Len: 1, File: site.src.path, SrcStart: site.start, SrcEnd: site.end})
	}
	out := w.sb.Len()
	w.raw(t.text)
	w.add(Segment{Out: out, Len: len(t.text), File: site.src.path, SrcStart: site.start, SrcEnd: site.end})
}

// synthesized writes text that has no origin.
func (w *writer) synthesized(s string) {
	out := w.sb.Len()
	w.raw(s)
	w.add(Segment{Out: out, Len: len(s)})
}

func (w *writer) flushNewlines() {
	if w.pendingNewlines > 0 {
		w.synthesized(strings.Repeat("\n", w.pendingNewlines))
		w.pendingNewlines = 0
	}
}

// ensureLineStart terminates the current output line if it has content.
func (w *writer) ensureLineStart() {
	if w.sb.Len() > 0 && w.last != '\n' {
		w.synthesized("\n")
	}
}

func (w *writer) text() string { return w.sb.String() }

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// wouldMerge reports whether two adjacent characters could lex as part of
// one token.
func wouldMerge(a, b byte) bool {
	if isIdentPart(a) && (isIdentPart(b) || b == '\'' || b == '"') {
		return true
	}
	if a == '.' && isDigit(b) {
		return true
	}
	const joiners = "+-*/%<>=!&|^#:.~?"
	return strings.IndexByte(joiners, a) >= 0 && strings.IndexByte(joiners, b) >= 0
}
