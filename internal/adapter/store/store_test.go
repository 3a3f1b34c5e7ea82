package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"embedkit/internal/port"
	"embedkit/internal/vecindex"
)

func newStores(t *testing.T) map[string]port.IndexStore {
	t.Helper()

	fs, err := NewFileStore(filepath.Join(t.TempDir(), "indexes"))
	if err != nil {
		t.Fatal(err)
	}
	bs, err := NewBoltStore(filepath.Join(t.TempDir(), "indexes.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { bs.Close() })

	return map[string]port.IndexStore{"file": fs, "bolt": bs}
}

func buildIndex(t *testing.T) *vecindex.Flat {
	t.Helper()
	idx, err := vecindex.New(3, "test-model",
		[]string{"alpha", "beta", "gamma"},
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func TestStore_RoundTrip(t *testing.T) {
	for kind, st := range newStores(t) {
		t.Run(kind, func(t *testing.T) {
			idx := buildIndex(t)
			if err := st.Save("kb", idx); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			loaded, err := st.Load("kb")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			wantMeta, wantRows := idx.Snapshot()
			gotMeta, gotRows := loaded.Snapshot()

			if gotMeta.TotalChunks != wantMeta.TotalChunks ||
				gotMeta.Model != wantMeta.Model ||
				gotMeta.Dimension != wantMeta.Dimension {
				t.Errorf("metadata mismatch: got %+v want %+v", gotMeta, wantMeta)
			}
			for i := range wantMeta.Chunks {
				if gotMeta.Chunks[i] != wantMeta.Chunks[i] {
					t.Errorf("chunk %d mismatch: %+v vs %+v", i, gotMeta.Chunks[i], wantMeta.Chunks[i])
				}
			}
			for i := range wantRows {
				for j := range wantRows[i] {
					if gotRows[i][j] != wantRows[i][j] {
						t.Errorf("row %d component %d mismatch", i, j)
					}
				}
			}
		})
	}
}

func TestStore_RoundTripEmptyIndex(t *testing.T) {
	for kind, st := range newStores(t) {
		t.Run(kind, func(t *testing.T) {
			idx, err := vecindex.New(8, "test-model", nil, nil)
			if err != nil {
				t.Fatal(err)
			}
			if err := st.Save("empty", idx); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			loaded, err := st.Load("empty")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if loaded.Len() != 0 || loaded.Dim() != 8 {
				t.Errorf("expected empty dim-8 index, got %d vectors dim %d", loaded.Len(), loaded.Dim())
			}
		})
	}
}

func TestStore_SaveAfterAdd(t *testing.T) {
	for kind, st := range newStores(t) {
		t.Run(kind, func(t *testing.T) {
			idx := buildIndex(t)
			if err := st.Save("kb", idx); err != nil {
				t.Fatal(err)
			}
			if err := idx.Add([]string{"delta"}, [][]float32{{1, 1, 1}}); err != nil {
				t.Fatal(err)
			}
			if err := st.Save("kb", idx); err != nil {
				t.Fatalf("re-save failed: %v", err)
			}

			loaded, err := st.Load("kb")
			if err != nil {
				t.Fatal(err)
			}
			if loaded.Len() != 4 {
				t.Errorf("expected 4 vectors after update, got %d", loaded.Len())
			}
			meta := loaded.Metadata()
			if meta.UpdatedAt == nil {
				t.Error("expected updated_at to survive the round trip")
			}
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	for kind, st := range newStores(t) {
		t.Run(kind, func(t *testing.T) {
			_, err := st.Load("missing")
			if !errors.Is(err, vecindex.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			ok, err := st.Exists("missing")
			if err != nil {
				t.Fatal(err)
			}
			if ok {
				t.Error("Exists reported a missing index")
			}
		})
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	for kind, st := range newStores(t) {
		t.Run(kind, func(t *testing.T) {
			for _, name := range []string{"b", "a"} {
				if err := st.Save(name, buildIndex(t)); err != nil {
					t.Fatal(err)
				}
			}

			names, err := st.List()
			if err != nil {
				t.Fatal(err)
			}
			if len(names) != 2 || names[0] != "a" || names[1] != "b" {
				t.Errorf("expected sorted [a b], got %v", names)
			}

			if err := st.Delete("a"); err != nil {
				t.Fatal(err)
			}
			if _, err := st.Load("a"); !errors.Is(err, vecindex.ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
			names, err = st.List()
			if err != nil {
				t.Fatal(err)
			}
			if len(names) != 1 || names[0] != "b" {
				t.Errorf("expected [b] after delete, got %v", names)
			}
		})
	}
}

func TestStore_InvalidName(t *testing.T) {
	for kind, st := range newStores(t) {
		t.Run(kind, func(t *testing.T) {
			if err := st.Save("../escape", buildIndex(t)); err == nil {
				t.Error("expected error for path-traversal name")
			}
			if _, err := st.Load(""); err == nil {
				t.Error("expected error for empty name")
			}
		})
	}
}

func TestFileStore_PartialWriteIsCorrupt(t *testing.T) {
	root := filepath.Join(t.TempDir(), "indexes")
	st, err := NewFileStore(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Save("kb", buildIndex(t)); err != nil {
		t.Fatal(err)
	}

	// Simulate a crash between artifact writes.
	if err := os.Remove(filepath.Join(root, "chunks", "kb.json")); err != nil {
		t.Fatal(err)
	}

	_, err = st.Load("kb")
	if !errors.Is(err, vecindex.ErrCorruptIndex) {
		t.Errorf("expected ErrCorruptIndex for partial index, got %v", err)
	}
}

func TestFileStore_TamperedRowsAreCorrupt(t *testing.T) {
	root := filepath.Join(t.TempDir(), "indexes")
	st, err := NewFileStore(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Save("kb", buildIndex(t)); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(root, "embeddings", "kb.vec")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data[:len(data)-4], 0644); err != nil {
		t.Fatal(err)
	}

	_, err = st.Load("kb")
	if !errors.Is(err, vecindex.ErrCorruptIndex) {
		t.Errorf("expected ErrCorruptIndex for truncated rows, got %v", err)
	}
}

func TestBoltStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indexes.db")
	st, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Save("kb", buildIndex(t)); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	st, err = NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	loaded, err := st.Load("kb")
	if err != nil {
		t.Fatalf("Load after reopen failed: %v", err)
	}
	if loaded.Len() != 3 {
		t.Errorf("expected 3 vectors, got %d", loaded.Len())
	}
}
