// Package ocr defines the text-extraction engine interface, the fragment
// model shared by all backends, and the Tesseract-based implementations.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"
)

// ErrNoEngine indicates that no OCR backend is usable on this system. It is
// a fatal configuration error: surfaced at startup, never per image.
var ErrNoEngine = errors.New("no OCR engine available")

// Engine extracts text from an image. Implementations filter out fragments
// below their backend-specific confidence floor and never return fragments
// with empty text.
type Engine interface {
	// Name returns the registry identifier of this engine.
	Name() string

	// ExtractFragments returns positioned text fragments in top-to-bottom,
	// left-to-right reading order.
	ExtractFragments(ctx context.Context, img image.Image) ([]Fragment, error)

	// ExtractText returns the recognized text as a plain string without
	// layout reconstruction.
	ExtractText(ctx context.Context, img image.Image) (string, error)

	Close() error
}

// Factory constructs an engine, failing when the backend is not usable.
type Factory func() (Engine, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// DefaultPreference is the fixed order in which backends are tried when the
// caller does not name one.
var DefaultPreference = []string{EngineTesseract, EngineTesseractSparse, EngineHandwriting}

// Register adds an engine factory under the given name, replacing any
// previous registration.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// New constructs the engine registered under name.
func New(name string) (Engine, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown OCR engine: %q", name)
	}
	eng, err := f()
	if err != nil {
		return nil, fmt.Errorf("engine %q unavailable: %w", name, err)
	}
	return eng, nil
}

// Registered returns the sorted names of all registered engines.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Available returns the registered engine names whose backends are usable,
// in registry-sorted order.
func Available() []string {
	var available []string
	for _, name := range Registered() {
		eng, err := New(name)
		if err != nil {
			continue
		}
		_ = eng.Close()
		available = append(available, name)
	}
	return available
}

// BestAvailable returns the first usable engine in DefaultPreference order.
func BestAvailable() (Engine, error) {
	return BestAvailableFrom(DefaultPreference)
}

// BestAvailableFrom returns the first usable engine from the given
// preference order, or ErrNoEngine when none can be constructed.
func BestAvailableFrom(preference []string) (Engine, error) {
	for _, name := range preference {
		eng, err := New(name)
		if err != nil {
			continue
		}
		return eng, nil
	}
	return nil, ErrNoEngine
}
