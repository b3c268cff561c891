package main

import "fmt"

// ConfigError reports a missing credential or an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

// RequestError is returned for any non-success response from the photo API.
type RequestError struct {
	StatusCode int
	Status     string
}

func (e *RequestError) Error() string {
	return "Failed to fetch images: " + e.Status
}

type CacheIOError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheIOError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheIOError) Unwrap() error { return e.Err }
