// Package source models the set of text files ("scripts") that make up a
// yov program, grounded on the teacher's text.TextFile: line/column lookup
// reuses its newline-index binary search, and file reading reuses its
// BOM-aware unicode transform so UTF-16 scripts are read transparently.
package source

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/yov-lang/yov/internal/token"
)

var newlineFinder = regexp.MustCompile("\n")

// Script is a single imported source file.
type Script struct {
	ID       int
	AbsPath  string
	Dir      string
	Text     string
	newlines []int // byte offset of each '\n' in Text
}

// New builds a Script, computing its line-offset table once up front.
func New(id int, absPath string, text string) *Script {
	idx := newlineFinder.FindAllStringIndex(text, -1)
	newlines := make([]int, len(idx))
	for i, m := range idx {
		newlines[i] = m[0]
	}
	return &Script{
		ID:       id,
		AbsPath:  absPath,
		Dir:      filepath.Dir(absPath),
		Text:     text,
		newlines: newlines,
	}
}

// LineCol returns the 1-based line and 0-based column of a byte offset,
// using the same binary-search-over-newline-offsets algorithm as the
// teacher's TextFile.FindLineAndColumn.
func (s *Script) LineCol(offset token.Pos) (line, col int) {
	off := int(offset)
	lineIdx := sort.Search(len(s.newlines), func(i int) bool { return s.newlines[i] >= off })
	line = lineIdx + 1
	lineStart := 0
	if lineIdx > 0 {
		lineStart = s.newlines[lineIdx-1] + 1
	}
	return line, off - lineStart
}

// LineText returns the trimmed source text of the line containing offset,
// used to expand the "{line}" placeholder in diagnostic messages.
func (s *Script) LineText(offset token.Pos) string {
	off := int(offset)
	lineIdx := sort.Search(len(s.newlines), func(i int) bool { return s.newlines[i] >= off })
	start := 0
	if lineIdx > 0 {
		start = s.newlines[lineIdx-1] + 1
	}
	end := len(s.Text)
	if lineIdx < len(s.newlines) {
		end = s.newlines[lineIdx]
	}
	if start > end || start > len(s.Text) {
		return ""
	}
	if end > len(s.Text) {
		end = len(s.Text)
	}
	return trimSpace(s.Text[start:end])
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

// ReadFile reads filename, normalizing a UTF-16 BOM to UTF-8 if present
// (the teacher's ReadTextFile/newUnicodeReader behavior); files without a
// BOM pass through untouched.
func ReadFile(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	decoder := unicode.UTF8.NewDecoder()
	r := transform.NewReader(f, unicode.BOMOverride(decoder))
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Set is the process-wide pool of scripts, keyed by absolute path so that
// importing the same file twice from different directories adds it once.
//
// Set is safe for concurrent use: the Location Scanner pass appends to it
// from every lane as transitive imports are discovered (spec §5).
type Set struct {
	mu      sync.Mutex
	byPath  map[string]*Script
	scripts []*Script
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{byPath: map[string]*Script{}}
}

// Add registers a script at absPath with the given text if it is not
// already present, returning the (possibly pre-existing) Script and whether
// it was newly added.
func (s *Set) Add(absPath, text string) (*Script, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.byPath[absPath]; ok {
		return sc, false
	}
	sc := New(len(s.scripts), absPath, text)
	s.byPath[absPath] = sc
	s.scripts = append(s.scripts, sc)
	return sc, true
}

// All returns a snapshot slice of every script currently in the set, in
// the order they were added (and therefore stable ID order).
func (s *Set) All() []*Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Script, len(s.scripts))
	copy(out, s.scripts)
	return out
}

// Len returns the current number of scripts in the set.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scripts)
}

// Get returns the script with the given absolute path, or nil.
func (s *Set) Get(absPath string) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byPath[absPath]
}
