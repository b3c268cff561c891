package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v3"
)

// appEnv bundles what every command needs once the configuration is loaded.
type appEnv struct {
	cfg      *Config
	cache    *CacheStore
	searcher *CachedSearcher
	close    func()
}

func setup(c *cli.Command) (*appEnv, error) {
	cfg, err := LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	debugLogging.Store(c.Bool("debug") || cfg.Debug.Verbose)

	backend, closeBackend := openBackend(cfg)
	cache := NewCacheStore(backend, cfg.CacheTTL())
	return &appEnv{
		cfg:      cfg,
		cache:    cache,
		searcher: NewCachedSearcher(NewUnsplashApi(cfg), cache, c.Bool("interactive")),
		close:    closeBackend,
	}, nil
}

// openBackend prefers the durable sqlite cache and falls back to memory
// when it cannot be opened.
func openBackend(cfg *Config) (Backend, func()) {
	mem := NewMemoryBackend(cfg.Cache.MemorySize, cfg.CacheTTL())
	if cfg.Cache.Path == "" {
		return mem, func() {}
	}
	store, err := OpenSQLiteBackend(cfg.Cache.Path)
	if err != nil {
		logger := log.New(os.Stderr, "(cache) ", log.LstdFlags)
		logger.Println("Using memory cache:", (&CacheIOError{Op: "open", Key: cfg.Cache.Path, Err: err}).Error())
		return mem, func() {}
	}
	return store, func() { store.Close() }
}

func (rt *appEnv) newGallery(ctx context.Context, initialQuery string, onChange func(State)) (*Gallery, *ViewportObserver) {
	observer := NewViewportObserver(rt.cfg.Gallery)
	g := NewGallery(ctx, rt.searcher, GalleryOptions{
		InitialQuery: initialQuery,
		Debounce:     rt.cfg.Gallery.Debounce(),
		Observer:     observer,
		AttachDelay:  rt.cfg.Gallery.AttachDelay(),
		OnChange:     onChange,
	})
	return g, observer
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve a gallery session over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Listen address (overrides config)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := setup(c)
			if err != nil {
				return err
			}
			defer rt.close()
			if addr := c.String("listen"); addr != "" {
				rt.cfg.Listen = addr
			}
			if err := rt.cfg.ValidateServe(); err != nil {
				return err
			}

			go rt.cache.PurgeExpired(ctx, time.Hour)

			gallery, observer := rt.newGallery(ctx, rt.cfg.Gallery.InitialQuery, nil)
			defer gallery.Close()
			if err := gallery.Mount(); err != nil {
				log.Println("Initial load failed:", err.Error())
			}
			return NewServer(gallery, observer, rt.cfg.Debug.PrettyJson).ListenAndServe(ctx, rt.cfg.Listen)
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Print the first pages of results for a query",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "pages",
				Usage: "Number of pages to load",
				Value: 1,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := setup(c)
			if err != nil {
				return err
			}
			defer rt.close()
			query := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return fmt.Errorf("search: query missing")
			}
			return runSearch(ctx, os.Stdout, rt.searcher, query, c.Int("pages"))
		},
	}
}

// runSearch loads page 1 and then up to pages-1 continuation pages.
func runSearch(ctx context.Context, out io.Writer, searcher PhotoSearcher, query string, pages int) error {
	loader := NewLoader(searcher, query)
	err := loader.Mount(ctx)
	for i := 1; err == nil && i < pages && loader.State().HasMore; i++ {
		err = loader.LoadPage(ctx, false)
	}
	fmt.Fprint(out, renderState(loader.State()))
	return err
}

func browseCommand() *cli.Command {
	return &cli.Command{
		Name:      "browse",
		Usage:     "Interactive session: type a query, empty line scrolls, :submit, :show, :quit",
		ArgsUsage: "[initial query]",
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := setup(c)
			if err != nil {
				return err
			}
			defer rt.close()
			initial := rt.cfg.Gallery.InitialQuery
			if c.Args().Present() {
				initial = strings.Join(c.Args().Slice(), " ")
			}
			return runBrowse(ctx, rt, initial, os.Stdin, os.Stdout)
		},
	}
}

func runBrowse(ctx context.Context, rt *appEnv, initial string, in io.Reader, out io.Writer) error {
	p := &printer{out: out}
	gallery, observer := rt.newGallery(ctx, initial, p.changed)
	defer gallery.Close()
	gallery.Mount()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case ":quit":
			return nil
		case ":submit":
			gallery.Submit()
		case ":show":
			p.write(renderState(gallery.State()))
		case "":
			observer.Scroll(observer.Bottom(len(gallery.State().Results)))
		default:
			gallery.SetQuery(line)
		}
	}
	return scanner.Err()
}

// printer writes newly arrived records as the session changes.
type printer struct {
	mu      sync.Mutex
	out     io.Writer
	query   string
	printed int
}

func (p *printer) changed(st State) {
	if st.Loading {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if st.Query != p.query || len(st.Results) < p.printed {
		p.query = st.Query
		p.printed = 0
		fmt.Fprintln(p.out, titleStyle.Render("Unsplash Image Gallery: "+st.Query))
	}
	if st.Error != "" {
		fmt.Fprintln(p.out, errorStyle.Render(st.Error))
	}
	fmt.Fprint(p.out, renderImages(st.Results, p.printed))
	p.printed = len(st.Results)
	fmt.Fprintln(p.out, renderStatus(st))
}

func (p *printer) write(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.out, s)
}
