package main

import (
	"context"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// LoadErrorMessage is what users see when a page could not be loaded.
const LoadErrorMessage = "Failed to load images. Please try again later."

type LoadStatus string

const (
	StatusIdle    LoadStatus = "idle"
	StatusLoading LoadStatus = "loading"
	StatusLoaded  LoadStatus = "loaded"
	StatusError   LoadStatus = "error"
)

// State is a snapshot of a load session.
type State struct {
	Query   string      `json:"query"`
	Page    int         `json:"page"`
	Results []ImageData `json:"results"`
	Loading bool        `json:"isLoading"`
	HasMore bool        `json:"hasMore"`
	Error   string      `json:"error,omitempty"`
	Status  LoadStatus  `json:"status"`
}

// Loader owns the load session: the effective query, the tracked page and
// the accumulated results. At most one load runs per session; a request
// arriving while one is in flight is dropped, not queued.
//
// Each session carries a generation. Changing the effective query starts a
// new generation and cancels the in-flight load, whose result is then
// discarded when it returns.
type Loader struct {
	searcher PhotoSearcher
	log      *log.Logger
	onChange func(State)

	mu       sync.Mutex
	query    string
	lastUsed string
	page     int
	results  *ResultSet
	loading  bool
	hasMore  bool
	lastErr  error
	errMsg   string
	status   LoadStatus
	gen      uint64
	cancel   context.CancelFunc
}

func NewLoader(searcher PhotoSearcher, initialQuery string) *Loader {
	q := strings.TrimSpace(initialQuery)
	return &Loader{
		searcher: searcher,
		log:      log.New(os.Stderr, "(gallery) ", log.LstdFlags),
		query:    q,
		lastUsed: q,
		page:     1,
		results:  NewResultSet(),
		hasMore:  true,
		status:   StatusIdle,
	}
}

// OnChange registers fn to receive a snapshot after every state transition.
// It is called without any lock held.
func (l *Loader) OnChange(fn func(State)) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// Mount performs the one-time bootstrap load for a non-empty initial query.
func (l *Loader) Mount(ctx context.Context) error {
	l.mu.Lock()
	empty := l.query == ""
	l.mu.Unlock()
	if empty {
		return nil
	}
	return l.LoadPage(ctx, true)
}

// LoadPage fetches page 1 (reset) or the tracked page (continuation) of the
// effective query and merges it into the results. It is a no-op while a load
// is running, when the query is empty, or on a continuation once the pages
// are exhausted. The returned error is the underlying cause; users get
// LoadErrorMessage through State.
func (l *Loader) LoadPage(ctx context.Context, reset bool) error {
	l.mu.Lock()
	if l.loading || (!reset && !l.hasMore) || l.query == "" {
		l.mu.Unlock()
		return nil
	}
	page := l.page
	if reset {
		page = 1
	}
	query := l.query
	gen := l.gen
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	l.cancel = cancel
	l.loading = true
	l.errMsg = ""
	l.status = StatusLoading
	l.mu.Unlock()
	l.notify()

	id := uuid.NewString()
	debugf(l.log, "load %s: %q page %d (reset=%t)", id, query, page, reset)
	res, err := l.searcher.SearchPhotos(ctx, query, page)

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		l.log.Printf("load %s: discarding result for superseded query %q", id, query)
		return nil
	}
	l.loading = false
	l.cancel = nil
	if err != nil {
		l.lastErr = err
		l.errMsg = LoadErrorMessage
		l.status = StatusError
		l.mu.Unlock()
		l.log.Printf("load %s: Error loading images: %v", id, err)
		l.notify()
		return err
	}

	if reset {
		l.results.Replace(res.Images)
		l.page = 2
	} else {
		added := l.results.Append(res.Images)
		debugf(l.log, "load %s: %d of %d records new", id, added, len(res.Images))
		if page == l.page {
			l.page++
		}
	}
	l.hasMore = page < res.TotalPages
	l.lastErr = nil
	l.status = StatusLoaded
	l.mu.Unlock()
	l.notify()
	return nil
}

// SetEffectiveQuery reacts to a new debounced query. An empty query clears
// the results without fetching; a query different from the last one used
// resets the session and loads page 1.
func (l *Loader) SetEffectiveQuery(ctx context.Context, q string) error {
	current := strings.TrimSpace(q)
	l.mu.Lock()
	if current == "" {
		l.supersede()
		l.query = ""
		l.lastUsed = ""
		l.page = 1
		l.hasMore = true
		l.results.Clear()
		l.errMsg = ""
		l.status = StatusIdle
		l.mu.Unlock()
		l.notify()
		return nil
	}
	if current == l.lastUsed {
		l.query = current
		l.mu.Unlock()
		return nil
	}
	l.supersede()
	l.lastUsed = current
	l.query = current
	l.page = 1
	l.hasMore = true
	l.mu.Unlock()
	return l.LoadPage(ctx, true)
}

// Submit reloads page 1 for q, starting a new session first if q differs
// from the query in use.
func (l *Loader) Submit(ctx context.Context, q string) error {
	current := strings.TrimSpace(q)
	l.mu.Lock()
	same := current != "" && current == l.lastUsed
	l.mu.Unlock()
	if !same {
		return l.SetEffectiveQuery(ctx, q)
	}
	return l.LoadPage(ctx, true)
}

// supersede starts a new generation. Callers hold l.mu.
func (l *Loader) supersede() {
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.loading = false
}

func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Err returns the cause of the last failed load, if the session is in error.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

func (l *Loader) snapshot() State {
	return State{
		Query:   l.query,
		Page:    l.page,
		Results: l.results.Images(),
		Loading: l.loading,
		HasMore: l.hasMore,
		Error:   l.errMsg,
		Status:  l.status,
	}
}

func (l *Loader) notify() {
	l.mu.Lock()
	fn := l.onChange
	var st State
	if fn != nil {
		st = l.snapshot()
	}
	l.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}
