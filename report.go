// Package yov is the top-level orchestration layer (spec.md §2's "top-level
// orchestration" row): it wires internal/compiler's front-end output into
// internal/runtime, constructs the ambient globals spec.md §6.3 describes,
// and collects/prints the diagnostics every pass of spec.md §7's tier-1
// taxonomy produces. Generalizes the teacher's output.go (which matched
// Finding against Advisory to build a []Report and serialize it to JSON)
// to this package's simpler need: sort and print []compiler.Diagnostic,
// with no cross-referencing step required since a Diagnostic is already
// self-contained.
package yov

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/yov-lang/yov/internal/compiler"
)

// Diagnostic is a compile-time diagnostic (spec.md §7 tier 1): reused
// directly from internal/compiler rather than re-declared, since it
// already carries everything a Reporter needs to sort and print one
// (the owning Script, for both ScriptID and `{line}` expansion, plus a
// byte Offset and Message).
type Diagnostic = compiler.Diagnostic

// Reporter collects Diagnostics from every front-end pass, sorts them by
// (ScriptID, Offset) before printing (spec.md §7), and expands a `{line}`
// placeholder in a Message to the offending source line.
type Reporter struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// NewReporter returns an empty Reporter.
func NewReporter() *Reporter { return &Reporter{} }

// Add appends ds to the collected diagnostics; safe for concurrent use so
// internal/compiler's pooled passes can report directly into one Reporter.
func (r *Reporter) Add(ds ...Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, ds...)
}

// HasErrors reports whether any diagnostic was collected — spec.md §7:
// "If any diagnostic exists, execution is skipped."
func (r *Reporter) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.diags) > 0
}

// Diagnostics returns a sorted-by-(ScriptID, Offset) snapshot of every
// diagnostic collected so far.
func (r *Reporter) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := scriptID(out[i]), scriptID(out[j])
		if si != sj {
			return si < sj
		}
		return out[i].Pos < out[j].Pos
	})
	return out
}

func scriptID(d Diagnostic) int {
	if d.Script == nil {
		return -1
	}
	return d.Script.ID
}

// Fprint writes every collected diagnostic to w, one per line, sorted and
// with `{line}` expanded to the offending source line the way spec.md §7
// describes ("A `{line}` placeholder in a message is replaced by a quoted
// sample of the offending source line").
func (r *Reporter) Fprint(w io.Writer) {
	for _, d := range r.Diagnostics() {
		fmt.Fprintln(w, formatDiagnostic(d))
	}
}

func formatDiagnostic(d Diagnostic) string {
	msg := d.Msg
	if d.Script != nil && strings.Contains(msg, "{line}") {
		msg = strings.ReplaceAll(msg, "{line}", strconv.Quote(d.Script.LineText(d.Pos)))
	}
	prev := d
	prev.Msg = msg
	return prev.Error()
}
