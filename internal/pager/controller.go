// Package pager drives the random paging screen: one gif at a time, a like
// toggle that saves to favorites, share, and back/forward paging.
package pager

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gifapp/internal/autoplay"
	"gifapp/internal/history"
	"gifapp/internal/model"
	"gifapp/internal/share"
)

// DefaultHistorySize is the number of pages remembered for Previous.
const DefaultHistorySize = 20

// Source is the part of the service layer the pager needs.
type Source interface {
	Random(ctx context.Context) (model.Gif, error)
	AddFavorite(ctx context.Context, g model.Gif) (model.Gif, error)
	IsFavorite(id string) (bool, error)
}

// Executor runs fn off the UI thread (Go) or on it (Do).
type Executor interface {
	Go(fn func())
	Do(fn func())
}

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// EventKind tells observers what changed.
type EventKind int

const (
	CurrentChanged EventKind = iota
	LikeChanged
	LoadingChanged
	Shared
	Error
)

// Event is delivered to observers on the UI thread.
type Event struct {
	Kind    EventKind
	Gif     model.Gif // CurrentChanged, Shared
	Index   int       // CurrentChanged
	Liked   bool      // LikeChanged
	Loading bool      // LoadingChanged
	Err     error     // Error
}

// Option configures a Controller.
type Option func(*Controller)

// WithSender sets where Share delivers requests.
func WithSender(s share.Sender) Option {
	return func(c *Controller) { c.sender = s }
}

// WithAutoplay lets like and share pause p while they run.
func WithAutoplay(p *autoplay.Player) Option {
	return func(c *Controller) { c.player = p }
}

// WithHistorySize sets how many pages Previous can go back through.
func WithHistorySize(n int) Option {
	return func(c *Controller) { c.pages = history.New(n) }
}

// WithLogger routes log messages.
func WithLogger(l LoggerFunc) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller holds the paging screen state. All methods must be called on
// the UI thread.
type Controller struct {
	src       Source
	exec      Executor
	sender    share.Sender
	player    *autoplay.Player
	pages     *history.Pages
	logger    LoggerFunc
	observers []func(Event)

	index      int
	current    model.Gif
	hasCurrent bool
	liked      bool
	writes     int // favorite writes for the current fetch
	pending    int // fetches in flight
}

// New creates a controller with nothing on screen.
func New(src Source, exec Executor, opts ...Option) *Controller {
	c := &Controller{src: src, exec: exec}
	for _, opt := range opts {
		opt(c)
	}
	if c.pages == nil {
		c.pages = history.New(DefaultHistorySize)
	}
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

func (c *Controller) fail(err error) {
	c.logf("%v", err)
	c.emit(Event{Kind: Error, Err: err})
}

// CurrentIndex is the page number, starting at 0.
func (c *Controller) CurrentIndex() int { return c.index }

// Current returns the gif on screen.
func (c *Controller) Current() (model.Gif, bool) { return c.current, c.hasCurrent }

// Liked reports the like toggle of the current gif.
func (c *Controller) Liked() bool { return c.liked }

// Loading reports whether a fetch is in flight.
func (c *Controller) Loading() bool { return c.pending > 0 }

// CanGoBack reports whether Previous has somewhere to go.
func (c *Controller) CanGoBack() bool { return c.pages.CanBack() }

func (c *Controller) setPending(delta int) {
	was := c.Loading()
	c.pending += delta
	if now := c.Loading(); now != was {
		c.emit(Event{Kind: LoadingChanged, Loading: now})
	}
}

// show puts g on screen and starts a fresh like cycle for it.
func (c *Controller) show(g model.Gif, liked bool) {
	c.current = g
	c.hasCurrent = true
	c.liked = liked
	c.writes = 0
	c.emit(Event{Kind: CurrentChanged, Gif: g, Index: c.index})
	c.emit(Event{Kind: LikeChanged, Liked: liked})
}

// FetchRandom loads a random gif in the background and shows it when done.
// Overlapping fetches are not de-duplicated: whichever completes last is
// what stays on screen. A fetch whose ctx is cancelled by completion time is
// discarded. Failures leave the current gif in place.
func (c *Controller) FetchRandom(ctx context.Context) {
	c.fetch(ctx, false)
}

// fetch loads a random gif; with advance set, a successful result also
// moves to the next page number.
func (c *Controller) fetch(ctx context.Context, advance bool) {
	c.setPending(1)
	c.exec.Go(func() {
		g, err := c.src.Random(ctx)
		c.exec.Do(func() {
			c.setPending(-1)
			if ctxErr := ctx.Err(); ctxErr != nil {
				c.logf("Discarding cancelled fetch: %v", ctxErr)
				return
			}
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				c.fail(fmt.Errorf("fetching random gif: %w", err))
				return
			}
			if advance {
				c.index++
			}
			c.pages.Push(g)
			c.show(g, false)
		})
	})
}

// Next fetches a new gif for the following page. The page number only
// moves once the gif is shown.
func (c *Controller) Next(ctx context.Context) {
	c.fetch(ctx, true)
}

// Previous re-shows the gif before the current one. Its like toggle reflects
// whether it is already a favorite. Returns false at the start of history.
func (c *Controller) Previous() bool {
	g, ok := c.pages.Back()
	if !ok {
		return false
	}
	if c.index > 0 {
		c.index--
	}
	c.show(g, false)
	c.exec.Go(func() {
		fav, err := c.src.IsFavorite(g.ID)
		c.exec.Do(func() {
			if err != nil {
				c.logf("Checking favorite %s failed: %v", g.ID, err)
				return
			}
			if fav && c.hasCurrent && c.current.ID == g.ID && !c.liked {
				c.liked = true
				c.emit(Event{Kind: LikeChanged, Liked: true})
			}
		})
	})
	return true
}

// ToggleLike flips the like state. The first switch into liked for the
// current fetch saves the gif to favorites; later toggles only change the
// flag. Unliking does not remove the favorite.
func (c *Controller) ToggleLike() {
	if !c.hasCurrent {
		return
	}
	c.liked = !c.liked
	c.emit(Event{Kind: LikeChanged, Liked: c.liked})
	if !c.liked || c.writes > 0 {
		return
	}
	c.writes++

	g := c.current
	if c.player != nil {
		c.player.Pause(true)
	}
	c.exec.Go(func() {
		saved, err := c.src.AddFavorite(context.Background(), g)
		c.exec.Do(func() {
			if c.player != nil {
				c.player.ResumeAfterOperation()
			}
			if err != nil {
				if c.current.ID == g.ID {
					c.writes = 0 // allow another attempt
				}
				c.fail(fmt.Errorf("saving favorite %s: %w", g.ID, err))
				return
			}
			c.logf("Liked %s", g.Title())
			c.pages.Update(saved)
			if c.current.ID == saved.ID {
				c.current.LocalPath = saved.LocalPath
			}
		})
	})
}

// Share sends the current gif to the configured sender. It does nothing and
// returns false when there is no gif or its local file is missing.
func (c *Controller) Share() bool {
	if !c.hasCurrent || c.sender == nil {
		return false
	}
	req, ok := share.Compose(c.current)
	if !ok {
		return false
	}
	if c.player != nil {
		c.player.Pause(true)
		defer c.player.ResumeAfterOperation()
	}
	if err := c.sender.Send(req); err != nil {
		c.fail(fmt.Errorf("sharing %s: %w", c.current.ID, err))
		return false
	}
	c.emit(Event{Kind: Shared, Gif: c.current})
	return true
}
