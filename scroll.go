package main

import (
	"context"
	"log"
	"os"
	"sync"
	"time"
)

// Observer watches a single rendered item and calls back when it comes
// into view.
type Observer interface {
	Observe(target int)
	OnVisible(fn func())
	Disconnect()
}

// ViewportObserver tracks a scroll position over a fixed grid of rows and
// treats the target as visible when its row starts within margin of the
// bottom edge of the viewport.
type ViewportObserver struct {
	columns   int
	rowHeight int
	viewport  int
	margin    int

	mu     sync.Mutex
	offset int
	target int
	fn     func()
}

func NewViewportObserver(cfg GalleryConfig) *ViewportObserver {
	return &ViewportObserver{
		columns:   max(cfg.Columns, 1),
		rowHeight: max(cfg.RowHeightPx, 1),
		viewport:  cfg.ViewportPx,
		margin:    cfg.ScrollMarginPx,
		target:    -1,
	}
}

func (o *ViewportObserver) OnVisible(fn func()) {
	o.mu.Lock()
	o.fn = fn
	o.mu.Unlock()
}

// Observe replaces the target. Like a browser intersection observer it
// reports once right away if the target is already in view.
func (o *ViewportObserver) Observe(target int) {
	o.mu.Lock()
	o.target = target
	fire := o.visibleLocked()
	fn := o.fn
	o.mu.Unlock()
	if fire && fn != nil {
		fn()
	}
}

func (o *ViewportObserver) Disconnect() {
	o.mu.Lock()
	o.target = -1
	o.mu.Unlock()
}

// Scroll moves the top of the viewport to offset.
func (o *ViewportObserver) Scroll(offset int) {
	o.mu.Lock()
	o.offset = max(offset, 0)
	fire := o.visibleLocked()
	fn := o.fn
	o.mu.Unlock()
	if fire && fn != nil {
		fn()
	}
}

// Bottom is the offset at which the last of count items is fully in view.
func (o *ViewportObserver) Bottom(count int) int {
	rows := (count + o.columns - 1) / o.columns
	return max(rows*o.rowHeight-o.viewport, 0)
}

func (o *ViewportObserver) Offset() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.offset
}

func (o *ViewportObserver) visibleLocked() bool {
	if o.target < 0 {
		return false
	}
	top := (o.target / o.columns) * o.rowHeight
	bottom := top + o.rowHeight
	return top <= o.offset+o.viewport+o.margin && bottom >= o.offset-o.margin
}

// Pager is the part of the Loader the scroll trigger drives.
type Pager interface {
	State() State
	LoadPage(ctx context.Context, reset bool) error
}

// ScrollTrigger asks the pager for the next page whenever the last
// rendered item becomes visible. A disabled trigger never attaches.
type ScrollTrigger struct {
	ctx      context.Context
	observer Observer
	pager    Pager
	delay    time.Duration
	enabled  bool
	log      *log.Logger

	mu     sync.Mutex
	timer  *time.Timer
	count  int
	closed bool
}

func NewScrollTrigger(ctx context.Context, observer Observer, pager Pager, attachDelay time.Duration, enabled bool) *ScrollTrigger {
	t := &ScrollTrigger{
		ctx:      ctx,
		observer: observer,
		pager:    pager,
		delay:    attachDelay,
		enabled:  enabled,
		log:      log.New(os.Stderr, "(scroll) ", log.LstdFlags),
	}
	if enabled {
		observer.OnVisible(t.visible)
	}
	return t
}

// Rendered tells the trigger how many items are on screen. When the count
// changes the observer is moved to the new last item after the attach delay.
func (t *ScrollTrigger) Rendered(count int) {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	if t.closed || count == t.count {
		t.mu.Unlock()
		return
	}
	t.count = count
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()

	t.observer.Disconnect()
	if count == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.count != count {
		return
	}
	target := count - 1
	t.timer = time.AfterFunc(t.delay, func() {
		t.mu.Lock()
		stale := t.closed || t.count != count
		t.mu.Unlock()
		if stale {
			return
		}
		debugf(t.log, "observing item %d", target)
		t.observer.Observe(target)
	})
}

// Close cancels a pending attachment and stops observing. No load is
// signalled afterwards.
func (t *ScrollTrigger) Close() {
	t.mu.Lock()
	t.closed = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
	if t.enabled {
		t.observer.Disconnect()
	}
}

func (t *ScrollTrigger) visible() {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return
	}
	st := t.pager.State()
	if st.Loading || !st.HasMore {
		return
	}
	debugf(t.log, "last item visible, loading page %d", st.Page)
	t.pager.LoadPage(t.ctx, false)
}
