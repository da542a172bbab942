package datasource

import (
	"fmt"
	"log"

	"github.com/yourusername/choice-sim/internal/config"
)

// Registry holds the named observation sources declared in configuration.
type Registry struct {
	sources map[string]ObservationSource
}

// NewRegistry builds every configured CSV and HTTP source. HTTP sources
// share a rate-limited client per source so retry and circuit state stay
// isolated.
func NewRegistry(cfg config.DataSourcesConfig, httpLogger *log.Logger) *Registry {
	sources := make(map[string]ObservationSource)

	for _, c := range cfg.CSV {
		sources[c.Name] = NewCSVSource(c)
	}
	for _, h := range cfg.HTTP {
		client := NewRateLimitedHTTPClient(ClientConfigFromSource(h), httpLogger)
		sources[h.Name] = NewHTTPSource(h, client)
	}

	return &Registry{sources: sources}
}

// Get returns the source registered under name.
func (r *Registry) Get(name string) (ObservationSource, error) {
	src, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown observation source %q", name)
	}
	return src, nil
}

// Names lists the registered source names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	return names
}
