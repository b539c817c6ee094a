package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/blockpad/pkg/document"
)

func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func sampleDoc(value string) *document.Document {
	return &document.Document{Blocks: []*document.Node{{
		Type:   "math_number",
		ID:     "n1",
		Fields: []document.Field{{Name: "NUM", Value: value}},
	}}}
}

// runStoreSuite exercises the Store contract against any backend.
func runStoreSuite(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("save assigns identity", func(t *testing.T) {
		rec := &Record{Name: "first", Document: sampleDoc("1")}
		if err := st.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if rec.ID == "" {
			t.Error("Save left ID empty")
		}
		if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
			t.Error("Save left timestamps zero")
		}
	})

	t.Run("load round trip", func(t *testing.T) {
		rec := &Record{Name: "program", Document: sampleDoc("42")}
		if err := st.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}

		got, err := st.Load(ctx, rec.ID)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.Name != "program" {
			t.Errorf("Name = %q", got.Name)
		}
		if got.Document == nil || got.Document.CountNodes() != 1 {
			t.Fatalf("Document = %+v", got.Document)
		}
		if v := got.Document.Blocks[0].Fields[0].Value; v != "42" {
			t.Errorf("field value = %q, want 42", v)
		}
	})

	t.Run("loaded record is a copy", func(t *testing.T) {
		rec := &Record{Name: "isolated", Document: sampleDoc("1")}
		if err := st.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}

		first, err := st.Load(ctx, rec.ID)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		first.Document.Blocks[0].Fields[0].Value = "mutated"

		second, err := st.Load(ctx, rec.ID)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if v := second.Document.Blocks[0].Fields[0].Value; v != "1" {
			t.Errorf("stored record mutated through a loaded copy: %q", v)
		}
	})

	t.Run("save updates in place", func(t *testing.T) {
		rec := &Record{Name: "draft", Document: sampleDoc("1")}
		if err := st.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
		created := rec.CreatedAt

		time.Sleep(10 * time.Millisecond)
		rec.Name = "final"
		rec.Document = sampleDoc("2")
		if err := st.Save(ctx, rec); err != nil {
			t.Fatalf("second Save: %v", err)
		}

		got, err := st.Load(ctx, rec.ID)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.Name != "final" {
			t.Errorf("Name = %q after update", got.Name)
		}
		if !got.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt changed on update: %v != %v", got.CreatedAt, created)
		}
		if !got.UpdatedAt.After(got.CreatedAt) {
			t.Errorf("UpdatedAt %v not after CreatedAt %v", got.UpdatedAt, got.CreatedAt)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		a := &Record{Name: "older", Document: sampleDoc("1")}
		if err := st.Save(ctx, a); err != nil {
			t.Fatalf("Save: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
		b := &Record{Name: "newer", Document: sampleDoc("2")}
		if err := st.Save(ctx, b); err != nil {
			t.Fatalf("Save: %v", err)
		}

		infos, err := st.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		posA, posB := -1, -1
		for i, in := range infos {
			switch in.ID {
			case a.ID:
				posA = i
			case b.ID:
				posB = i
			}
		}
		if posA < 0 || posB < 0 {
			t.Fatalf("saved records missing from listing: %+v", infos)
		}
		if posB > posA {
			t.Errorf("newer record listed after older (%d > %d)", posB, posA)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := &Record{Name: "doomed", Document: sampleDoc("1")}
		if err := st.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := st.Delete(ctx, rec.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := st.Load(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load after delete = %v, want ErrNotFound", err)
		}
		if err := st.Delete(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second Delete = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		if _, err := st.Load(ctx, NewID()); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load = %v, want ErrNotFound", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()
	runStoreSuite(t, st)
}

func TestFileStore(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer st.Close()
	runStoreSuite(t, st)
}

func TestFileStoreRejectsUnsafeID(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	for _, id := range []string{"../escape", "a/b", `a\b`} {
		rec := &Record{ID: id, Document: sampleDoc("1")}
		if err := st.Save(ctx, rec); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Save(%q) = %v, want ErrInvalidID", id, err)
		}
		if _, err := st.Load(ctx, id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Load(%q) = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestFileStoreListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	rec := &Record{Name: "keep", Document: sampleDoc("1")}
	if err := st.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	writeTestFile(t, dir, "notes.txt", "not json")
	writeTestFile(t, dir, "broken.json", "{nope")

	infos, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != rec.ID {
		t.Errorf("List = %+v", infos)
	}
}

func TestStampPreservesExistingID(t *testing.T) {
	rec := &Record{ID: "fixed"}
	stamp(rec)
	if rec.ID != "fixed" {
		t.Errorf("ID = %q", rec.ID)
	}
}
