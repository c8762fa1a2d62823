// Package assets resolves game file paths across a stack of GRF archives,
// the way the client overlays patch archives on top of data.grf.
package assets

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Faultbox/dxs-export/pkg/grf"
)

// Manager reads files from several archives. Archives are searched in reverse
// order (last added = highest priority).
type Manager struct {
	archives []*grf.Archive
	paths    []string
}

// Open opens every archive in paths. On failure the archives opened so far
// are closed again.
func Open(paths ...string) (*Manager, error) {
	m := &Manager{}
	for _, path := range paths {
		if err := m.AddArchive(path); err != nil {
			m.Close()
			return nil, err
		}
	}
	return m, nil
}

// AddArchive adds a GRF archive on top of the stack.
func (m *Manager) AddArchive(path string) error {
	archive, err := grf.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}
	m.archives = append(m.archives, archive)
	m.paths = append(m.paths, path)
	return nil
}

// Len returns the number of open archives.
func (m *Manager) Len() int {
	return len(m.archives)
}

// Load reads a file from the highest-priority archive that has it.
func (m *Manager) Load(path string) ([]byte, error) {
	i := m.find(path)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", grf.ErrFileNotFound, path)
	}
	data, err := m.archives[i].Read(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.paths[i], err)
	}
	return data, nil
}

// Origin returns the archive path a file would be loaded from.
func (m *Manager) Origin(path string) (string, bool) {
	i := m.find(path)
	if i < 0 {
		return "", false
	}
	return m.paths[i], true
}

// List returns the union of all archive listings, sorted.
func (m *Manager) List() []string {
	var files []string
	for _, archive := range m.archives {
		files = append(files, archive.List()...)
	}
	slices.Sort(files)
	return slices.Compact(files)
}

// Close closes all archives.
func (m *Manager) Close() error {
	var errs []error
	for _, archive := range m.archives {
		errs = append(errs, archive.Close())
	}
	m.archives = nil
	m.paths = nil
	return errors.Join(errs...)
}

func (m *Manager) find(path string) int {
	for i := len(m.archives) - 1; i >= 0; i-- {
		if m.archives[i].Contains(path) {
			return i
		}
	}
	return -1
}
