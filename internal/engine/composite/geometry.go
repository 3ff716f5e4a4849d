package composite

import "math"

// Layout limits.
const (
	// MinColumnWidth is the smallest fraction of the block a column may take.
	MinColumnWidth = 0.15

	// MaxColumns is the largest number of columns in a block.
	MaxColumns = 4

	// MinCardHeight is the floor for card minimum heights in pixels.
	MinCardHeight = 48

	// DefaultCardHeight is the minimum height given to new cards.
	DefaultCardHeight = 120

	// WidthTolerance is the allowed deviation of the width sum from 1.
	WidthTolerance = 1e-6
)

// EqualWidths returns n equal fractions summing to 1.
func EqualWidths(n int) []float64 {
	if n <= 0 {
		return nil
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}

// ValidWidths reports whether w sums to 1 and every entry is at least
// MinColumnWidth.
func ValidWidths(w []float64) bool {
	if len(w) == 0 {
		return false
	}
	sum := 0.0
	for _, x := range w {
		if math.IsNaN(x) || x < MinColumnWidth-WidthTolerance {
			return false
		}
		sum += x
	}
	return math.Abs(sum-1) <= WidthTolerance
}

// NormalizeWidths clamps every width to MinColumnWidth and scales the
// unclamped ones so the result sums to 1. Non-finite or non-positive
// input collapses to equal widths.
func NormalizeWidths(w []float64) []float64 {
	n := len(w)
	if n == 0 {
		return nil
	}
	out := make([]float64, n)
	sum := 0.0
	for i, x := range w {
		if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
			x = 0
		}
		out[i] = x
		sum += x
	}
	if sum <= 0 || float64(n)*MinColumnWidth > 1 {
		return EqualWidths(n)
	}
	for i := range out {
		out[i] /= sum
	}

	pinned := make([]bool, n)
	for range n {
		free, budget := 0.0, 1.0
		for i, x := range out {
			if pinned[i] {
				budget -= MinColumnWidth
				continue
			}
			free += x
		}
		if free <= 0 {
			break
		}
		changed := false
		for i, x := range out {
			if pinned[i] {
				continue
			}
			out[i] = x * budget / free
			if out[i] < MinColumnWidth {
				out[i] = MinColumnWidth
				pinned[i] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return out
}

// DividerDrag is a live drag of the boundary between two columns.
type DividerDrag struct {
	start    []float64
	boundary int
	current  []float64
}

// BeginDividerDrag starts dragging the boundary between column boundary
// and boundary+1. Out-of-range boundaries are clamped.
func BeginDividerDrag(widths []float64, boundary int) *DividerDrag {
	start := append([]float64(nil), widths...)
	if len(start) < 2 {
		boundary = 0
	} else {
		boundary = min(max(boundary, 0), len(start)-2)
	}
	return &DividerDrag{
		start:    start,
		boundary: boundary,
		current:  append([]float64(nil), start...),
	}
}

// Boundary returns the index of the column left of the dragged divider.
func (d *DividerDrag) Boundary() int { return d.boundary }

// Move places the divider at fraction split of the block width and
// returns the resulting widths for display. The split is clamped so that
// each column can keep MinColumnWidth. Columns on each side keep their
// proportions relative to the drag start.
func (d *DividerDrag) Move(split float64) []float64 {
	n := len(d.start)
	if n < 2 {
		return append([]float64(nil), d.current...)
	}
	left := d.boundary + 1
	right := n - left

	lo := float64(left) * MinColumnWidth
	hi := 1 - float64(right)*MinColumnWidth
	if math.IsNaN(split) {
		split = lo
	}
	split = min(max(split, lo), hi)

	next := make([]float64, n)
	rescale(next[:left], d.start[:left], split)
	rescale(next[left:], d.start[left:], 1-split)
	d.current = next
	return append([]float64(nil), next...)
}

// Current returns the widths of the last Move.
func (d *DividerDrag) Current() []float64 {
	return append([]float64(nil), d.current...)
}

// Release ends the drag and returns the widths to commit.
func (d *DividerDrag) Release() []float64 {
	return NormalizeWidths(d.current)
}

func rescale(dst, src []float64, total float64) {
	sum := 0.0
	for _, x := range src {
		if x > 0 {
			sum += x
		}
	}
	for i, x := range src {
		if sum <= 0 {
			dst[i] = total / float64(len(src))
			continue
		}
		dst[i] = max(x, 0) / sum * total
	}
}

// Edge names the card edge being dragged.
type Edge int

// Card edges.
const (
	EdgeBottom Edge = iota
	EdgeTop
)

// String implements fmt.Stringer.
func (e Edge) String() string {
	if e == EdgeTop {
		return "top"
	}
	return "bottom"
}

// CardResize is a live resize of one card's minimum height.
type CardResize struct {
	start   int
	edge    Edge
	current int
}

// BeginCardResize starts resizing a card whose minimum height is height.
func BeginCardResize(height int, edge Edge) *CardResize {
	height = max(height, MinCardHeight)
	return &CardResize{start: height, edge: edge, current: height}
}

// Move applies the total pointer delta since the drag started and
// returns the height to display. Dragging the bottom edge down grows the
// card; dragging the top edge down shrinks it.
func (r *CardResize) Move(delta int) int {
	if r.edge == EdgeTop {
		delta = -delta
	}
	r.current = max(r.start+delta, MinCardHeight)
	return r.current
}

// Release ends the resize and returns the height to commit.
func (r *CardResize) Release() int {
	return r.current
}
