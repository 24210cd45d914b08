// # Format Registry
//
// Package formats dispatches slide paths to format plugins. A plugin
// registers a Descriptor (name, probe, open function); Open walks the
// registered descriptors, probes each one against the path, and wraps
// the first plugin that claims it in a slide.Reader.
package formats

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ironsheep/wholeslide/pkg/slide"
)

// ErrUnknownFormat marks a path no registered format claims.
var ErrUnknownFormat = errors.New("unrecognized slide format")

// Descriptor describes one registered format plugin.
type Descriptor struct {
	// Name is the format name reported in metadata, e.g. "pyramiddir".
	Name string
	// Probe reports whether the path looks like this format. Probes
	// should be cheap: extension and marker-file checks, not full
	// parses.
	Probe func(path string) bool
	// Open opens the slide. Open is only called after Probe accepted
	// the path, but may still fail on malformed content.
	Open func(path string) (slide.Format, error)
}

var (
	registryMu sync.RWMutex
	registry   []Descriptor
)

// Register adds a format descriptor. Plugins call this from init;
// later registrations of the same name replace earlier ones.
func Register(d Descriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for i, existing := range registry {
		if existing.Name == d.Name {
			registry[i] = d
			return
		}
	}
	registry = append(registry, d)
}

// Names returns the registered format names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, len(registry))
	for i, d := range registry {
		names[i] = d.Name
	}
	sort.Strings(names)
	return names
}

// Detect returns the name of the format that claims a path.
func Detect(path string) (string, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, d := range registry {
		if d.Probe(path) {
			return d.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Open opens a slide with whichever registered format claims the path
// and wraps it in a Reader. Options are passed through to the Reader,
// so callers can supply their own tile cache.
func Open(path string, opts ...slide.Option) (*slide.Reader, error) {
	registryMu.RLock()
	descriptors := make([]Descriptor, len(registry))
	copy(descriptors, registry)
	registryMu.RUnlock()

	for _, d := range descriptors {
		if !d.Probe(path) {
			continue
		}
		format, err := d.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s as %s: %w", path, d.Name, err)
		}
		reader, err := slide.NewReader(format, opts...)
		if err != nil {
			format.Close()
			return nil, err
		}
		return reader, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}
