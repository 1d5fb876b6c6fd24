package dag

import (
	"sort"

	"traceview/internal/models"
)

// Index maps a task id to the ids of its immediate dependents.
type Index struct {
	children map[string][]string
}

// NewIndex builds the reverse adjacency of an edge list. Duplicate edges are
// collapsed.
func NewIndex(edges []models.DependencyEdge) *Index {
	sets := make(map[string]map[string]struct{})
	for _, edge := range edges {
		if edge.JobID == "" || edge.Dependent == "" {
			continue
		}
		set := sets[edge.Dependent]
		if set == nil {
			set = make(map[string]struct{})
			sets[edge.Dependent] = set
		}
		set[edge.JobID] = struct{}{}
	}

	children := make(map[string][]string, len(sets))
	for parent, set := range sets {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		children[parent] = ids
	}
	return &Index{children: children}
}

// ChildrenOf returns the sorted immediate dependents of id.
func (idx *Index) ChildrenOf(id string) []string {
	if idx == nil {
		return nil
	}
	kids := idx.children[id]
	out := make([]string, len(kids))
	copy(out, kids)
	return out
}

// Len is the number of tasks that have at least one dependent.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.children)
}

// HighlightFor returns id together with its immediate dependents.
func HighlightFor(id string, idx *Index) map[string]struct{} {
	kids := idx.ChildrenOf(id)
	out := make(map[string]struct{}, len(kids)+1)
	out[id] = struct{}{}
	for _, kid := range kids {
		out[kid] = struct{}{}
	}
	return out
}

// HighlightSelection resolves a click into the highlight set for state.
// Outlier display and dependency highlighting are exclusive, so an empty set
// is returned while outliers are shown, as well as when nothing was clicked.
func HighlightSelection(id string, state models.VisualState, idx *Index) map[string]struct{} {
	if state.DisplayOutliers || id == "" {
		return map[string]struct{}{}
	}
	return HighlightFor(id, idx)
}

// SortedIDs flattens a highlight set for stable output.
func SortedIDs(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
