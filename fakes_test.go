package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type searchCall struct {
	Query string
	Page  int
}

// fakeSearcher serves canned pages keyed by query and page. A gate registered
// for a page holds that request until the gate is closed or ctx ends.
type fakeSearcher struct {
	mu      sync.Mutex
	calls   []searchCall
	pages   map[searchCall]*SearchResult
	gates   map[searchCall]chan struct{}
	err     error
	started chan searchCall
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		pages: map[searchCall]*SearchResult{},
		gates: map[searchCall]chan struct{}{},
	}
}

func (f *fakeSearcher) add(query string, page int, res *SearchResult) *fakeSearcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[searchCall{query, page}] = res
	return f
}

func (f *fakeSearcher) hold(query string, page int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gates[searchCall{query, page}] = gate
	return gate
}

func (f *fakeSearcher) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeSearcher) SearchPhotos(ctx context.Context, query string, page int) (*SearchResult, error) {
	call := searchCall{query, page}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	gate := f.gates[call]
	res := f.pages[call]
	err := f.err
	started := f.started
	f.mu.Unlock()

	if started != nil {
		started <- call
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		return &SearchResult{}, nil
	}
	return res, nil
}

func (f *fakeSearcher) FetchPhotos(ctx context.Context, query string, page int) (*SearchResult, error) {
	return f.SearchPhotos(ctx, query, page)
}

func (f *fakeSearcher) Calls() []searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]searchCall(nil), f.calls...)
}

// unsplashPage builds a result the way the API client would, Raw included.
func unsplashPage(totalPages int, ids ...string) *SearchResult {
	data := UnsplashSearchResult{Total: totalPages * UnsplashPageSize, TotalPages: totalPages}
	for _, id := range ids {
		data.Results = append(data.Results, UnsplashPhoto{
			Id:             id,
			AltDescription: "Test image " + id,
			User:           UnsplashUser{Name: "Test User " + id},
			Urls:           UnsplashUrls{Regular: fmt.Sprintf("https://example.com/image%s.jpg", id)},
		})
	}
	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	res, err := decodeSearchResult(raw)
	if err != nil {
		panic(err)
	}
	return res
}

func idsOf(images []ImageData) []string {
	ids := make([]string, len(images))
	for i, img := range images {
		ids[i] = img.Id
	}
	return ids
}

func idRange(from, to int) []string {
	var ids []string
	for i := from; i <= to; i++ {
		ids = append(ids, fmt.Sprint(i))
	}
	return ids
}
