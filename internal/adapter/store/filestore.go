// Package store provides persistence adapters for named vector indexes:
// a directory layout of per-index artifacts, and a single-file bbolt
// database holding the same artifacts as buckets.
package store

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"embedkit/internal/domain"
	"embedkit/internal/vecindex"
)

// FileStore keeps three artifacts per named index under a root directory:
//
//	<root>/<name>.idx            serialized index form (gob manifest)
//	<root>/chunks/<name>.json    chunk metadata
//	<root>/embeddings/<name>.vec raw vector rows
//
// Every artifact is written to a temp file and renamed into place, with
// metadata committed last, so a crash mid-save is detected on the next
// Load as a corrupt index rather than silently accepted.
type FileStore struct {
	root string
}

// indexManifest is the index's own serialized form. The flat index needs no
// auxiliary search structure, so the manifest carries just enough to
// cross-check the other two artifacts.
type indexManifest struct {
	Dimension int
	Count     int
	Metric    string
}

const metricL2 = "l2"

// NewFileStore creates the root directory layout if needed.
func NewFileStore(root string) (*FileStore, error) {
	for _, dir := range []string{root, filepath.Join(root, "chunks"), filepath.Join(root, "embeddings")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) indexPath(name string) string {
	return filepath.Join(s.root, name+".idx")
}

func (s *FileStore) chunksPath(name string) string {
	return filepath.Join(s.root, "chunks", name+".json")
}

func (s *FileStore) embeddingsPath(name string) string {
	return filepath.Join(s.root, "embeddings", name+".vec")
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("invalid index name: %q", name)
	}
	return nil
}

// Save persists the index snapshot. Vectors are written first and metadata
// strictly last, each atomically.
func (s *FileStore) Save(name string, idx *vecindex.Flat) error {
	if err := validName(name); err != nil {
		return err
	}
	meta, rows := idx.Snapshot()

	if err := writeFileAtomic(s.embeddingsPath(name), encodeRows(meta.Dimension, rows)); err != nil {
		return fmt.Errorf("failed to write embeddings: %w", err)
	}

	var buf bytes.Buffer
	manifest := indexManifest{Dimension: meta.Dimension, Count: len(rows), Metric: metricL2}
	if err := gob.NewEncoder(&buf).Encode(manifest); err != nil {
		return fmt.Errorf("failed to encode index manifest: %w", err)
	}
	if err := writeFileAtomic(s.indexPath(name), buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := writeFileAtomic(s.chunksPath(name), data); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// Load restores a named index, cross-checking the three artifacts against
// each other. A fully absent index is ErrNotFound; a partially written or
// mutually inconsistent one is ErrCorruptIndex.
func (s *FileStore) Load(name string) (*vecindex.Flat, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	paths := []string{s.embeddingsPath(name), s.indexPath(name), s.chunksPath(name)}
	missing := 0
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			missing++
		} else if err != nil {
			return nil, err
		}
	}
	if missing == len(paths) {
		return nil, fmt.Errorf("%w: %q", vecindex.ErrNotFound, name)
	}
	if missing > 0 {
		return nil, fmt.Errorf("%w: index %q is missing %d of %d artifacts",
			vecindex.ErrCorruptIndex, name, missing, len(paths))
	}

	rowData, err := os.ReadFile(s.embeddingsPath(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read embeddings: %w", err)
	}
	dim, rows, err := decodeRows(rowData)
	if err != nil {
		return nil, err
	}

	idxData, err := os.ReadFile(s.indexPath(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}
	var manifest indexManifest
	if err := gob.NewDecoder(bytes.NewReader(idxData)).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("%w: unreadable index manifest: %v", vecindex.ErrCorruptIndex, err)
	}
	if manifest.Dimension != dim || manifest.Count != len(rows) {
		return nil, fmt.Errorf("%w: manifest declares %d rows of dimension %d, embeddings hold %d of %d",
			vecindex.ErrCorruptIndex, manifest.Count, manifest.Dimension, len(rows), dim)
	}

	metaData, err := os.ReadFile(s.chunksPath(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var meta domain.IndexMetadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("%w: unreadable metadata: %v", vecindex.ErrCorruptIndex, err)
	}

	idx, err := vecindex.Restore(meta, rows)
	if err != nil {
		return nil, fmt.Errorf("index %q: %w", name, err)
	}
	return idx, nil
}

// Exists reports whether all artifacts for a named index are present.
func (s *FileStore) Exists(name string) (bool, error) {
	if err := validName(name); err != nil {
		return false, err
	}
	for _, p := range []string{s.embeddingsPath(name), s.indexPath(name), s.chunksPath(name)} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return false, nil
		} else if err != nil {
			return false, err
		}
	}
	return true, nil
}

// List returns the names of stored indexes, sorted.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "chunks"))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes all artifacts for a named index.
func (s *FileStore) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	for _, p := range []string{s.chunksPath(name), s.indexPath(name), s.embeddingsPath(name)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
