package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/blockpad/pkg/document"
	"github.com/matzehuels/blockpad/pkg/store"
)

func TestStoreOptionsOpenMemory(t *testing.T) {
	opts := &storeOptions{Backend: "memory"}
	st, err := opts.open(context.Background())
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	rec := &store.Record{Name: "scratch", Document: &document.Document{}}
	if err := st.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := st.Load(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Name != "scratch" {
		t.Errorf("Name = %q, want scratch", loaded.Name)
	}
}

func TestStoreOptionsOpenFile(t *testing.T) {
	opts := &storeOptions{Backend: "file", Dir: t.TempDir()}
	st, err := opts.open(context.Background())
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	st.Close()
}

func TestStoreOptionsOpenUnknown(t *testing.T) {
	opts := &storeOptions{Backend: "carrier-pigeon"}
	_, err := opts.open(context.Background())
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "carrier-pigeon") {
		t.Errorf("error should name the backend, got: %v", err)
	}
}

func TestStoreOptionsOpenPostgresRequiresDSN(t *testing.T) {
	opts := &storeOptions{Backend: "postgres"}
	_, err := opts.open(context.Background())
	if err == nil {
		t.Fatal("expected error for missing DSN")
	}
	if !strings.Contains(err.Error(), "--postgres-dsn") {
		t.Errorf("error should mention the flag, got: %v", err)
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"0192d3f0-7a1c-7b2d-9e4f-abcdef012345", "0192d3f0"},
		{"short", "short"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := shortID(tt.id); got != tt.want {
			t.Errorf("shortID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestPullFileName(t *testing.T) {
	tests := []struct {
		name string
		rec  *store.Record
		want string
	}{
		{
			name: "plain name",
			rec:  &store.Record{ID: "abc", Name: "greeting"},
			want: "greeting.json",
		},
		{
			name: "spaces become dashes",
			rec:  &store.Record{ID: "abc", Name: "my first program"},
			want: "my-first-program.json",
		},
		{
			name: "unsafe characters dropped",
			rec:  &store.Record{ID: "abc", Name: "a/b:c*d"},
			want: "abcd.json",
		},
		{
			name: "empty name falls back to id",
			rec:  &store.Record{ID: "abc", Name: "  "},
			want: "abc.json",
		},
		{
			name: "fully unsafe name falls back to id",
			rec:  &store.Record{ID: "abc", Name: "///"},
			want: "abc.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pullFileName(tt.rec); got != tt.want {
				t.Errorf("pullFileName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-2 * 24 * time.Hour), "2d ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelativeTime(tt.t); got != tt.want {
				t.Errorf("formatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}

	old := time.Date(2023, time.March, 14, 0, 0, 0, 0, time.UTC)
	if got := formatRelativeTime(old); got != "Mar 14, 2023" {
		t.Errorf("formatRelativeTime(old) = %q, want Mar 14, 2023", got)
	}
}

func TestRenderDocTable(t *testing.T) {
	infos := []store.Info{
		{ID: "0192d3f0-7a1c-7b2d-9e4f-abcdef012345", Name: "greeting", UpdatedAt: time.Now()},
		{ID: "0192d3f0-0000-7b2d-9e4f-abcdef012345", Name: "counter", UpdatedAt: time.Now()},
	}

	out := renderDocTable(infos)
	for _, want := range []string{"0192d3f0", "greeting", "counter", "Updated"} {
		if !containsPlain(out, want) {
			t.Errorf("table should contain %q", want)
		}
	}
	// Only the short ID prefix is shown.
	if containsPlain(out, "abcdef012345") {
		t.Error("table should truncate IDs")
	}
}
