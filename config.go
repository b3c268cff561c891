package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const defaultConfigPath = "conf/config.json"

type Config struct {
	Unsplash struct {
		AccessKey string `json:"access"`
		SecretKey string `json:"secret"`
		BaseUrl   string `json:"baseUrl"`
	} `json:"unsplash.com"`
	Cache   CacheConfig   `json:"cache"`
	Gallery GalleryConfig `json:"gallery"`
	Listen  string        `json:"listen"`
	Debug   struct {
		PrettyJson bool `json:"prettyJson"`
		Verbose    bool `json:"verbose"`
	}
}

type CacheConfig struct {
	// Path of the sqlite database. Empty keeps the cache in memory only.
	Path       string `json:"path"`
	TTLSeconds int    `json:"ttlSeconds"`
	MemorySize int    `json:"memorySize"`
}

type GalleryConfig struct {
	InitialQuery   string `json:"initialQuery"`
	DebounceMs     int    `json:"debounceMs"`
	ScrollMarginPx int    `json:"scrollMarginPx"`
	AttachDelayMs  int    `json:"attachDelayMs"`
	Columns        int    `json:"columns"`
	RowHeightPx    int    `json:"rowHeightPx"`
	ViewportPx     int    `json:"viewportPx"`
}

func DefaultConfig() *Config {
	cfg := &Config{Listen: ":8081"}
	cfg.Unsplash.BaseUrl = unsplashSearchUrl
	cfg.Cache = CacheConfig{
		Path:       "data/cache.db",
		TTLSeconds: 3600,
		MemorySize: 256,
	}
	cfg.Gallery = GalleryConfig{
		InitialQuery:   "sports",
		DebounceMs:     500,
		ScrollMarginPx: 200,
		AttachDelayMs:  100,
		Columns:        4,
		RowHeightPx:    300,
		ViewportPx:     900,
	}
	return cfg
}

// LoadConfig reads the JSON file at path on top of the defaults and then
// applies environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := decodeConfig(f, cfg); err != nil {
			return nil, err
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("opening config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeConfig(f io.ReadSeeker, cfg *Config) error {
	err := json.NewDecoder(f).Decode(cfg)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		if _, serr := f.Seek(0, io.SeekStart); serr == nil {
			pos := findPos(bufio.NewReader(f), int(syntaxErr.Offset))
			return fmt.Errorf("unable to decode configuration file (Line: %d, Pos: %d): %w", pos.line, pos.pos, err)
		}
	}
	return fmt.Errorf("unable to decode configuration file: %w", err)
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv("UNSPLASH_ACCESS_KEY"); v != "" {
		cfg.Unsplash.AccessKey = v
	}
	if v, ok := os.LookupEnv("GALLERY_CACHE_PATH"); ok {
		cfg.Cache.Path = v
	}
	if v := os.Getenv("GALLERY_LISTEN"); v != "" {
		cfg.Listen = v
	}
}

// Validate checks the tunables. The access key is deliberately left out:
// a missing key is reported by the API client when a fetch is attempted.
func (cfg *Config) Validate() error {
	if err := validation.ValidateStruct(&cfg.Cache,
		validation.Field(&cfg.Cache.TTLSeconds, validation.Required, validation.Min(1)),
		validation.Field(&cfg.Cache.MemorySize, validation.Min(1)),
	); err != nil {
		return &ConfigError{Field: "cache", Reason: err.Error()}
	}
	if err := validation.ValidateStruct(&cfg.Gallery,
		validation.Field(&cfg.Gallery.DebounceMs, validation.Min(0)),
		validation.Field(&cfg.Gallery.ScrollMarginPx, validation.Min(0)),
		validation.Field(&cfg.Gallery.AttachDelayMs, validation.Min(0)),
		validation.Field(&cfg.Gallery.Columns, validation.Min(1)),
		validation.Field(&cfg.Gallery.RowHeightPx, validation.Min(1)),
		validation.Field(&cfg.Gallery.ViewportPx, validation.Min(1)),
	); err != nil {
		return &ConfigError{Field: "gallery", Reason: err.Error()}
	}
	return nil
}

func (cfg *Config) ValidateServe() error {
	if err := validation.Validate(cfg.Listen, validation.Required); err != nil {
		return &ConfigError{Field: "listen", Reason: err.Error()}
	}
	return nil
}

func (cfg *Config) CacheTTL() time.Duration {
	return time.Duration(cfg.Cache.TTLSeconds) * time.Second
}

func (g GalleryConfig) Debounce() time.Duration {
	return time.Duration(g.DebounceMs) * time.Millisecond
}

func (g GalleryConfig) AttachDelay() time.Duration {
	return time.Duration(g.AttachDelayMs) * time.Millisecond
}

type FilePos struct {
	line int
	pos  int
}

func findPos(file *bufio.Reader, offset int) FilePos {
	p := FilePos{line: 1, pos: offset}
	var lineLen int
	for line, err := file.ReadBytes('\n'); len(line) > 0 && err == nil; line, err = file.ReadBytes('\n') {
		if p.pos < len(line) {
			return p
		}
		lineLen += len(line)
		if line[len(line)-1] == '\n' {
			p.line += 1
			p.pos -= lineLen
			lineLen = 0
		}
	}
	return p
}
