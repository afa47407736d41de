// Package gallery drives the favorites grid: multi-select, the slide-up
// action sheet, batch delete and opening a single item.
package gallery

import (
	"fmt"
	"log"
	"sync"

	"gifapp/internal/model"
	"gifapp/internal/selection"
)

// Store is the part of the service layer the gallery needs.
type Store interface {
	Favorites() ([]model.Gif, error)
	DeleteFavorites(ids []string) ([]model.Gif, error)
}

// Executor runs fn off the UI thread (Go) or on it (Do).
type Executor interface {
	Go(fn func())
	Do(fn func())
}

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// SheetState is the position of the action sheet.
type SheetState int

const (
	Hidden SheetState = iota
	Expanded
)

func (s SheetState) String() string {
	if s == Expanded {
		return "expanded"
	}
	return "hidden"
}

// EventKind tells observers what changed.
type EventKind int

const (
	ItemsChanged EventKind = iota
	SheetChanged
	SelectionChanged
	OpenDetail
	Error
)

// Event is delivered to observers on the UI thread.
type Event struct {
	Kind  EventKind
	Sheet SheetState // SheetChanged
	Count int        // SelectionChanged
	Gif   model.Gif  // OpenDetail
	Err   error      // Error
}

// Controller holds the gallery screen state. All methods must be called on
// the UI thread; store access is pushed through the Executor.
type Controller struct {
	store     Store
	exec      Executor
	logger    LoggerFunc
	selection *selection.Tracker
	observers []func(Event)

	items     []model.Gif
	sheet     SheetState
	selectAll bool
	deleting  bool

	// loadMu orders store reads so generation numbers follow read order.
	loadMu  sync.Mutex
	loadGen uint64
	applied uint64 // newest generation shown, UI thread only
}

// New creates a controller with an empty list and a hidden sheet. Call
// Refresh to load the favorites.
func New(st Store, exec Executor, logger LoggerFunc) *Controller {
	c := &Controller{
		store:     st,
		exec:      exec,
		logger:    logger,
		selection: selection.New(),
	}
	c.selection.Subscribe(c.selectionChanged)
	return c
}

func (c *Controller) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// Subscribe registers fn for every Event.
func (c *Controller) Subscribe(fn func(Event)) {
	if fn != nil {
		c.observers = append(c.observers, fn)
	}
}

func (c *Controller) emit(ev Event) {
	for _, fn := range c.observers {
		fn(ev)
	}
}

// selectionChanged keeps the sheet in step with the selection count.
func (c *Controller) selectionChanged(count int) {
	c.emit(Event{Kind: SelectionChanged, Count: count})
	switch {
	case count > 0 && c.sheet == Hidden:
		c.setSheet(Expanded)
	case count == 0:
		c.selectAll = false
		c.setSheet(Hidden)
	}
}

// setSheet moves the sheet. Entering Hidden always clears the selection and
// unchecks select-all, whatever the cause.
func (c *Controller) setSheet(s SheetState) {
	if s == c.sheet {
		return
	}
	c.sheet = s
	if s == Hidden {
		c.selectAll = false
		c.selection.Clear()
	}
	c.emit(Event{Kind: SheetChanged, Sheet: s})
}

// Items returns the visible favorites.
func (c *Controller) Items() []model.Gif {
	out := make([]model.Gif, len(c.items))
	copy(out, c.items)
	return out
}

// Sheet returns the current action sheet state.
func (c *Controller) Sheet() SheetState { return c.sheet }

// SelectAllChecked reports the state of the select-all box.
func (c *Controller) SelectAllChecked() bool { return c.selectAll }

// Selecting reports whether the screen is in selection mode.
func (c *Controller) Selecting() bool { return c.sheet == Expanded }

// IsSelected reports whether id is checked.
func (c *Controller) IsSelected(id string) bool { return c.selection.IsSelected(id) }

// SelectedCount returns the number of checked items.
func (c *Controller) SelectedCount() int { return c.selection.Count() }

// SelectedIDs returns the checked ids, sorted.
func (c *Controller) SelectedIDs() []string { return c.selection.SelectedIDs() }

// Refresh reloads the list from the store. Selections of items that are no
// longer stored are dropped.
func (c *Controller) Refresh() {
	c.exec.Go(func() {
		gifs, gen, err := c.load(nil)
		c.exec.Do(func() {
			if err != nil {
				c.fail("Loading favorites failed: %w", err)
				return
			}
			c.apply(gen, gifs)
		})
	})
}

// load runs write, if any, then reads the favorites. The returned
// generation is higher than that of every earlier read.
func (c *Controller) load(write func()) ([]model.Gif, uint64, error) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if write != nil {
		write()
	}
	gifs, err := c.store.Favorites()
	c.loadGen++
	return gifs, c.loadGen, err
}

// apply shows gifs unless a newer read has already been shown.
func (c *Controller) apply(gen uint64, gifs []model.Gif) {
	if gen < c.applied {
		return
	}
	c.applied = gen
	c.setItems(gifs)
}

func (c *Controller) setItems(gifs []model.Gif) {
	c.items = gifs
	c.selection.Retain(model.IDs(gifs))
	c.emit(Event{Kind: ItemsChanged})
}

func (c *Controller) fail(format string, err error) {
	wrapped := fmt.Errorf(format, err)
	c.logf("%v", wrapped)
	c.emit(Event{Kind: Error, Err: wrapped})
}

func (c *Controller) find(id string) (model.Gif, bool) {
	for _, g := range c.items {
		if g.ID == id {
			return g, true
		}
	}
	return model.Gif{}, false
}

// Tap toggles id while selecting, otherwise opens it.
func (c *Controller) Tap(id string) {
	if c.Selecting() {
		c.selection.Toggle(id)
		return
	}
	if g, ok := c.find(id); ok {
		c.emit(Event{Kind: OpenDetail, Gif: g})
	}
}

// LongPress toggles id, entering selection mode on the first one.
func (c *Controller) LongPress(id string) {
	if _, ok := c.find(id); ok {
		c.selection.Toggle(id)
	}
}

// Toggle flips the checkbox of id.
func (c *Controller) Toggle(id string) {
	c.selection.Toggle(id)
}

// SetSelectAll checks every visible item, or clears the selection.
func (c *Controller) SetSelectAll(checked bool) {
	if !checked {
		c.selectAll = false
		c.selection.Clear()
		return
	}
	c.selectAll = true
	c.selection.SelectAll(model.IDs(c.items))
	if c.selection.Count() == 0 {
		c.selectAll = false
	}
}

// Cancel hides the sheet.
func (c *Controller) Cancel() { c.setSheet(Hidden) }

// Dismiss hides the sheet after the user swiped it away.
func (c *Controller) Dismiss() { c.setSheet(Hidden) }

// Deactivate is called when the screen loses focus.
func (c *Controller) Deactivate() { c.setSheet(Hidden) }

// DetailClosed reloads the list, since the detail view may have removed
// its item.
func (c *Controller) DetailClosed() { c.Refresh() }

// DeleteSelected removes the checked items from the store, then hides the
// sheet and reloads the list. Calls made while a delete is running are
// ignored.
func (c *Controller) DeleteSelected() {
	ids := c.selection.SelectedIDs()
	if len(ids) == 0 {
		c.setSheet(Hidden)
		return
	}
	if c.deleting {
		return
	}
	c.deleting = true
	c.exec.Go(func() {
		var removed []model.Gif
		var delErr error
		gifs, gen, loadErr := c.load(func() {
			removed, delErr = c.store.DeleteFavorites(ids)
		})
		c.exec.Do(func() {
			c.deleting = false
			if delErr != nil {
				if removed == nil {
					c.fail("Deleting favorites failed: %w", delErr)
				} else {
					c.logf("Deleted %d favorite(s) with errors: %v", len(removed), delErr)
				}
			}
			c.setSheet(Hidden)
			if loadErr != nil {
				c.fail("Reloading favorites failed: %w", loadErr)
				return
			}
			c.apply(gen, gifs)
		})
	})
}

// Remove deletes a single favorite, as the detail view does.
func (c *Controller) Remove(id string) {
	c.exec.Go(func() {
		var delErr error
		gifs, gen, loadErr := c.load(func() {
			_, delErr = c.store.DeleteFavorites([]string{id})
		})
		c.exec.Do(func() {
			if delErr != nil {
				c.fail("Removing favorite failed: %w", delErr)
			}
			if loadErr != nil {
				c.fail("Reloading favorites failed: %w", loadErr)
				return
			}
			c.apply(gen, gifs)
		})
	})
}
