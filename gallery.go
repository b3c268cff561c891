package main

import (
	"context"
	"sync"
	"time"
)

type GalleryOptions struct {
	InitialQuery string
	Debounce     time.Duration
	// Observer drives infinite scroll. Nil disables it.
	Observer    Observer
	AttachDelay time.Duration
	OnChange    func(State)
}

// Gallery is what a UI binds to: the typed query, the debounced load
// session behind it and the scroll trigger feeding it further pages.
type Gallery struct {
	ctx      context.Context
	loader   *Loader
	debounce *Debouncer
	trigger  *ScrollTrigger
	onChange func(State)

	mu    sync.Mutex
	input string
}

func NewGallery(ctx context.Context, searcher PhotoSearcher, opts GalleryOptions) *Gallery {
	g := &Gallery{
		ctx:      ctx,
		loader:   NewLoader(searcher, opts.InitialQuery),
		input:    opts.InitialQuery,
		onChange: opts.OnChange,
	}
	g.debounce = NewDebouncer(opts.Debounce, func(q string) {
		g.loader.SetEffectiveQuery(g.ctx, q)
	})
	observer := opts.Observer
	enabled := observer != nil
	if !enabled {
		observer = nopObserver{}
	}
	g.trigger = NewScrollTrigger(ctx, observer, g.loader, opts.AttachDelay, enabled)
	g.loader.OnChange(g.changed)
	return g
}

// Mount runs the bootstrap load for the initial query.
func (g *Gallery) Mount() error {
	return g.loader.Mount(g.ctx)
}

// SetQuery records what the user typed. The load session follows once the
// input has been stable for the debounce delay.
func (g *Gallery) SetQuery(q string) {
	g.mu.Lock()
	g.input = q
	g.mu.Unlock()
	g.debounce.Set(q)
}

func (g *Gallery) Query() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.input
}

// Submit skips the debounce delay and reloads the first page of the typed query.
func (g *Gallery) Submit() error {
	g.debounce.Stop()
	return g.loader.Submit(g.ctx, g.Query())
}

// LoadMore requests the next page directly, bypassing the scroll observer.
func (g *Gallery) LoadMore() error {
	return g.loader.LoadPage(g.ctx, false)
}

func (g *Gallery) State() State {
	st := g.loader.State()
	st.Query = g.Query()
	return st
}

func (g *Gallery) Close() {
	g.debounce.Stop()
	g.trigger.Close()
}

func (g *Gallery) changed(st State) {
	g.trigger.Rendered(len(st.Results))
	if g.onChange != nil {
		st.Query = g.Query()
		g.onChange(st)
	}
}

type nopObserver struct{}

func (nopObserver) Observe(int)      {}
func (nopObserver) OnVisible(func()) {}
func (nopObserver) Disconnect()      {}
