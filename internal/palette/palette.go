package palette

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownCategory is matched by lookups of kinds a fixed palette does not know.
var ErrUnknownCategory = errors.New("unknown category")

// UnknownCategoryError names the kind a fixed palette could not resolve.
type UnknownCategoryError struct {
	Category string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("%s %q", ErrUnknownCategory, e.Category)
}

func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

// Policy selects how a palette reacts to a category it has not seen.
type Policy int

const (
	// Fixed palettes fail on unmapped categories.
	Fixed Policy = iota
	// Dynamic palettes hand out the next slot to an unmapped category.
	Dynamic
)

func (p Policy) String() string {
	switch p {
	case Fixed:
		return "fixed"
	case Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// ApplicationColors is the fixed mapping used for application timelines.
var ApplicationColors = map[string]string{
	"lapack_dgeqrt":  "#8dd3c7",
	"lapack_dlarfb":  "#ffffb3",
	"lapack_dtpqrt":  "#bebada",
	"lapack_dtpmqrt": "#fb8072",
}

// RuntimeColors is the slot list used for raw runtime timelines.
var RuntimeColors = []string{
	"#8dd3c7",
	"#ffffb3",
	"#bebada",
	"#fb8072",
	"#80b1d3",
	"#fdb462",
	"#b3de69",
	"#fccde5",
	"#d9d9d9",
	"#bc80bd",
}

// Palette assigns each category a stable color key.
type Palette struct {
	policy Policy
	slots  []string

	mu       sync.Mutex
	assigned map[string]string
	order    []string
}

// NewFixed returns a palette that only knows the given mapping.
func NewFixed(mapping map[string]string) *Palette {
	p := &Palette{policy: Fixed, assigned: make(map[string]string, len(mapping))}
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.assigned[k] = mapping[k]
		p.order = append(p.order, k)
	}
	return p
}

// NewDynamic returns a palette that assigns slots in first-seen order. Once
// colors are exhausted the base color is reused with a cycle suffix
// ("#8dd3c7#1"), so every category keeps a distinct key.
func NewDynamic(colors []string) *Palette {
	slots := make([]string, len(colors))
	copy(slots, colors)
	if len(slots) == 0 {
		slots = append(slots, RuntimeColors...)
	}
	return &Palette{policy: Dynamic, slots: slots, assigned: make(map[string]string)}
}

// Policy reports the palette's policy.
func (p *Palette) Policy() Policy {
	return p.policy
}

// ColorFor resolves the color key of category.
func (p *Palette) ColorFor(category string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if color, ok := p.assigned[category]; ok {
		return color, nil
	}
	if p.policy == Fixed {
		return "", &UnknownCategoryError{Category: category}
	}
	n := len(p.order)
	color := p.slots[n%len(p.slots)]
	if cycle := n / len(p.slots); cycle > 0 {
		// past the color list, keys stay unique by suffixing the cycle
		color = fmt.Sprintf("%s#%d", color, cycle)
	}
	p.assigned[category] = color
	p.order = append(p.order, category)
	return color, nil
}

// Categories lists known categories, in assignment order for dynamic palettes
// and sorted for fixed ones.
func (p *Palette) Categories() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}
