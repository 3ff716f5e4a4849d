package codec

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dshills/folio/internal/engine/node"
)

// Issue describes one node that could not be imported.
type Issue struct {
	// Path locates the node, e.g. "root.children.2". Nodes of nested
	// editors are prefixed with the path of their composite.
	Path string
	Type node.Type
	Err  string
}

// String implements fmt.Stringer.
func (i Issue) String() string {
	if i.Err == "" {
		return fmt.Sprintf("%s (%s)", i.Path, i.Type)
	}
	return fmt.Sprintf("%s (%s): %s", i.Path, i.Type, i.Err)
}

// Report summarizes an import.
type Report struct {
	// Substituted is set when the input was replaced by an empty document.
	Substituted bool
	Reason      string

	// Unknown lists skipped nodes whose type has no registered class.
	Unknown []Issue

	// Rejected lists nodes whose class import failed or whose placement
	// the target editor refused.
	Rejected []Issue

	// Replaced counts nodes migrated by replacement rules, per source type.
	Replaced map[node.Type]int

	// Nodes counts imported nodes, nested editors included.
	Nodes int
}

func newReport() *Report {
	return &Report{Replaced: make(map[node.Type]int)}
}

// Clean reports whether the input was imported without loss.
func (r *Report) Clean() bool {
	return !r.Substituted && len(r.Unknown) == 0 && len(r.Rejected) == 0
}

// String renders the report for humans.
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "nodes: %d\n", r.Nodes)
	if r.Substituted {
		fmt.Fprintf(&sb, "substituted empty document: %s\n", r.Reason)
	}
	for _, t := range slices.Sorted(maps.Keys(r.Replaced)) {
		fmt.Fprintf(&sb, "replaced: %s x%d\n", t, r.Replaced[t])
	}
	for _, i := range r.Unknown {
		fmt.Fprintf(&sb, "unknown: %s\n", i)
	}
	for _, i := range r.Rejected {
		fmt.Fprintf(&sb, "rejected: %s\n", i)
	}
	return sb.String()
}
