// Package history provides the historical activity data that validation
// compares new values against.
//
// Every source returns up to limit values for a (source id, period) pair,
// newest first. SQLStore persists entry snapshots in PostgreSQL or SQLite;
// MemorySource serves fixtures; CachedSource puts a Redis or file cache in
// front of any of them.
package history

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Source returns recent activity values, newest first.
type Source interface {
	RecentActivityValues(ctx context.Context, sourceID, period string, limit int) ([]float64, error)
}

type seriesID struct {
	sourceID string
	period   string
}

// MemorySource is an in-process Source. Safe for concurrent use.
type MemorySource struct {
	mu     sync.RWMutex
	series map[seriesID][]float64
}

// NewMemorySource returns an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{series: make(map[seriesID][]float64)}
}

// Set replaces the series for a source and period. values are newest first.
func (m *MemorySource) Set(sourceID, period string, values []float64) {
	cp := make([]float64, len(values))
	copy(cp, values)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[seriesID{sourceID, period}] = cp
}

// Record adds value as the newest point of a series.
func (m *MemorySource) Record(sourceID, period string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := seriesID{sourceID, period}
	m.series[id] = append([]float64{value}, m.series[id]...)
}

// RecentActivityValues implements Source.
func (m *MemorySource) RecentActivityValues(_ context.Context, sourceID, period string, limit int) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := m.series[seriesID{sourceID, period}]
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	out := make([]float64, len(values))
	copy(out, values)
	return out, nil
}

// SeriesFile is the YAML layout accepted by LoadMemorySource.
type SeriesFile struct {
	History []struct {
		SourceID string    `yaml:"source_id"`
		Period   string    `yaml:"period"`
		Values   []float64 `yaml:"values"`
	} `yaml:"history"`
}

// LoadMemorySource reads a YAML file of series (values newest first).
func LoadMemorySource(path string) (*MemorySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history file %s: %w", path, err)
	}

	var file SeriesFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing history file %s: %w", path, err)
	}

	m := NewMemorySource()
	for _, s := range file.History {
		m.Set(s.SourceID, s.Period, s.Values)
	}
	return m, nil
}
