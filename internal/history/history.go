// Package history keeps the bounded back/forward list of gifs shown by the
// paging screen.
package history

import "gifapp/internal/model"

// Pages is the list of previously shown gifs with a cursor into it.
// It is owned by the UI thread.
type Pages struct {
	items    []model.Gif
	cursor   int
	capacity int
}

// New creates a history holding at most capacity entries.
// A capacity of 0 disables history. Negative capacity is treated as 0.
func New(capacity int) *Pages {
	if capacity < 0 {
		capacity = 0
	}
	return &Pages{
		items:    make([]model.Gif, 0, capacity),
		cursor:   -1,
		capacity: capacity,
	}
}

// Push records g as the newest page. Anything ahead of the cursor is
// discarded, and pushing the gif already under the cursor is a no-op.
func (p *Pages) Push(g model.Gif) {
	if p.capacity == 0 {
		return
	}
	if p.cursor >= 0 && p.cursor < len(p.items)-1 {
		p.items = p.items[:p.cursor+1]
	}
	if p.cursor >= 0 && p.items[p.cursor].ID == g.ID {
		p.items[p.cursor] = g
		return
	}

	p.items = append(p.items, g)
	if len(p.items) > p.capacity {
		p.items = p.items[len(p.items)-p.capacity:]
	}
	p.cursor = len(p.items) - 1
}

// Back moves the cursor one page back and returns that gif.
func (p *Pages) Back() (model.Gif, bool) {
	if p.cursor <= 0 {
		return model.Gif{}, false
	}
	p.cursor--
	return p.items[p.cursor], true
}

// Forward moves the cursor one page forward and returns that gif.
func (p *Pages) Forward() (model.Gif, bool) {
	if p.cursor < 0 || p.cursor >= len(p.items)-1 {
		return model.Gif{}, false
	}
	p.cursor++
	return p.items[p.cursor], true
}

// Current returns the gif under the cursor.
func (p *Pages) Current() (model.Gif, bool) {
	if p.cursor < 0 {
		return model.Gif{}, false
	}
	return p.items[p.cursor], true
}

// CanBack reports whether Back would succeed.
func (p *Pages) CanBack() bool { return p.cursor > 0 }

// CanForward reports whether Forward would succeed.
func (p *Pages) CanForward() bool { return p.cursor >= 0 && p.cursor < len(p.items)-1 }

// Len returns the number of recorded pages.
func (p *Pages) Len() int { return len(p.items) }

// Update replaces the recorded copy of g (matched by ID), e.g. after its
// local file was downloaded.
func (p *Pages) Update(g model.Gif) {
	for i := range p.items {
		if p.items[i].ID == g.ID {
			p.items[i] = g
		}
	}
}

// Remove drops every entry with the given id. When the current page is
// removed the cursor moves to the page before it.
func (p *Pages) Remove(id string) {
	if len(p.items) == 0 {
		return
	}

	kept := make([]model.Gif, 0, len(p.items))
	removedBefore := 0
	currentRemoved := false
	for i, g := range p.items {
		if g.ID != id {
			kept = append(kept, g)
			continue
		}
		switch {
		case i < p.cursor:
			removedBefore++
		case i == p.cursor:
			currentRemoved = true
		}
	}
	if len(kept) == len(p.items) {
		return
	}
	p.items = kept
	if len(p.items) == 0 {
		p.cursor = -1
		return
	}

	idx := p.cursor - removedBefore
	if currentRemoved {
		idx--
	}
	p.cursor = min(max(idx, 0), len(p.items)-1)
}

// Clear forgets all pages.
func (p *Pages) Clear() {
	p.items = make([]model.Gif, 0, p.capacity)
	p.cursor = -1
}
