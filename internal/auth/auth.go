// Package auth provides bearer-token credential sources for the trading
// API. The token itself is issued by an external login flow; this package
// only makes an already-issued token available to the engine without any
// component reaching into ambient global state.
package auth

import (
	"os"
	"strings"
	"sync"
)

// TokenSource yields the current bearer token, if one is available.
// Implementations must be safe for concurrent use.
type TokenSource interface {
	// Token returns the bearer token and true, or "" and false when no
	// credential is available.
	Token() (string, bool)
}

// Static returns a TokenSource that always yields the given token.
// An empty token yields absent.
func Static(token string) TokenSource {
	return staticSource(token)
}

type staticSource string

func (s staticSource) Token() (string, bool) {
	return string(s), s != ""
}

// Env returns a TokenSource backed by an environment variable, read on
// every call so external refreshes are picked up.
func Env(key string) TokenSource {
	return envSource(key)
}

type envSource string

func (e envSource) Token() (string, bool) {
	v := strings.TrimSpace(os.Getenv(string(e)))
	return v, v != ""
}

// File returns a TokenSource that reads the token from a file written by
// the external auth flow. A missing or empty file means no credential;
// read errors are not distinguished from absence.
func File(path string) TokenSource {
	return &fileSource{path: path}
}

type fileSource struct {
	mu   sync.Mutex
	path string
}

func (f *fileSource) Token() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}
