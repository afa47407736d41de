// Package selection tracks which gallery items are checked.
package selection

import "sort"

// Tracker is the in-memory multi-selection state of one gallery screen.
// It is owned by the UI thread and is not safe for concurrent use.
type Tracker struct {
	selected  map[string]struct{}
	observers []func(count int)
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{selected: make(map[string]struct{})}
}

// Subscribe registers fn to be called synchronously whenever the selection
// count changes.
func (t *Tracker) Subscribe(fn func(count int)) {
	if fn != nil {
		t.observers = append(t.observers, fn)
	}
}

func (t *Tracker) notifyIfChanged(before int) {
	after := len(t.selected)
	if after == before {
		return
	}
	for _, fn := range t.observers {
		fn(after)
	}
}

// Toggle flips the checked state of id and reports whether it is now selected.
func (t *Tracker) Toggle(id string) bool {
	before := len(t.selected)
	_, on := t.selected[id]
	if on {
		delete(t.selected, id)
	} else {
		t.selected[id] = struct{}{}
	}
	t.notifyIfChanged(before)
	return !on
}

// Select checks id.
func (t *Tracker) Select(id string) {
	before := len(t.selected)
	t.selected[id] = struct{}{}
	t.notifyIfChanged(before)
}

// SelectAll checks every id in ids.
func (t *Tracker) SelectAll(ids []string) {
	before := len(t.selected)
	for _, id := range ids {
		t.selected[id] = struct{}{}
	}
	t.notifyIfChanged(before)
}

// Clear unchecks everything.
func (t *Tracker) Clear() {
	before := len(t.selected)
	if before == 0 {
		return
	}
	t.selected = make(map[string]struct{})
	t.notifyIfChanged(before)
}

// Retain drops every selected id that is not in ids.
func (t *Tracker) Retain(ids []string) {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	before := len(t.selected)
	for id := range t.selected {
		if _, ok := keep[id]; !ok {
			delete(t.selected, id)
		}
	}
	t.notifyIfChanged(before)
}

// IsSelected reports whether id is checked.
func (t *Tracker) IsSelected(id string) bool {
	_, ok := t.selected[id]
	return ok
}

// SelectedIDs returns the checked ids, sorted.
func (t *Tracker) SelectedIDs() []string {
	ids := make([]string, 0, len(t.selected))
	for id := range t.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of checked ids.
func (t *Tracker) Count() int {
	return len(t.selected)
}
