package history

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/contentstate"
)

const (
	testCanvas   = "https://example.org/iiif/canvas/1"
	testManifest = "https://example.org/iiif/manifest.json"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store
}

func mustRecord(t *testing.T, store *Store, ref contentstate.CanvasReference) *Entry {
	t.Helper()
	token, err := contentstate.EncodeReference(ref)
	if err != nil {
		t.Fatalf("EncodeReference: %v", err)
	}
	entry, err := store.Record(context.Background(), ref, token)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	return entry
}

func TestRecordStoresEntry(t *testing.T) {
	store := openTestStore(t)
	ref := contentstate.CanvasReference{CanvasURL: testCanvas, ManifestURL: testManifest, Target: "xywh=0,0,10,10"}
	entry := mustRecord(t, store, ref)

	if _, err := uuid.Parse(entry.ID); err != nil {
		t.Fatalf("unexpected id %q: %v", entry.ID, err)
	}
	if entry.Variant != contentstate.VariantAnnotation {
		t.Fatalf("variant = %q", entry.Variant)
	}
	if entry.Digest != Digest(entry.Token) || len(entry.Digest) != 64 {
		t.Fatalf("digest = %q", entry.Digest)
	}
	if entry.Reference() != ref {
		t.Fatalf("reference = %+v", entry.Reference())
	}
	if entry.UseCount != 1 || entry.CreatedAt.IsZero() || !entry.CreatedAt.Equal(entry.LastUsedAt) {
		t.Fatalf("unexpected bookkeeping: %+v", entry)
	}
}

func TestRecordDeduplicatesByToken(t *testing.T) {
	store := openTestStore(t)
	ref := contentstate.CanvasReference{CanvasURL: testCanvas, ManifestURL: testManifest}
	first := mustRecord(t, store, ref)
	second := mustRecord(t, store, ref)

	if first.ID != second.ID {
		t.Fatalf("expected same entry, got %s and %s", first.ID, second.ID)
	}
	if second.UseCount != 2 {
		t.Fatalf("use count = %d, want 2", second.UseCount)
	}
	if !second.LastUsedAt.After(first.LastUsedAt) || !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("timestamps not updated correctly: %+v", second)
	}
	if count, _ := store.Count(context.Background()); count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestRecordRejectsEmptyToken(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Record(context.Background(), contentstate.CanvasReference{}, "  "); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestListOrdersByLastUse(t *testing.T) {
	store := openTestStore(t)
	a := mustRecord(t, store, contentstate.CanvasReference{CanvasURL: testCanvas + "a", ManifestURL: testManifest})
	b := mustRecord(t, store, contentstate.CanvasReference{CanvasURL: testCanvas + "b", ManifestURL: testManifest})
	mustRecord(t, store, a.Reference())

	entries, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != a.ID || entries[1].ID != b.ID {
		t.Fatalf("unexpected order: %v", ids(entries))
	}

	limited, err := store.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List limit: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != a.ID {
		t.Fatalf("limited list = %v", ids(limited))
	}
}

func TestGetByPrefix(t *testing.T) {
	store := openTestStore(t)
	entry := mustRecord(t, store, contentstate.CanvasReference{CanvasURL: testCanvas, ManifestURL: testManifest})

	got, err := store.Get(context.Background(), strings.ToUpper(entry.ID[:8]))
	if err != nil {
		t.Fatalf("Get prefix: %v", err)
	}
	if got.ID != entry.ID {
		t.Fatalf("got %s, want %s", got.ID, entry.ID)
	}

	if _, err := store.Get(context.Background(), "zzzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty id, got %v", err)
	}
}

func TestGetAmbiguousPrefix(t *testing.T) {
	store := openTestStore(t)
	mustRecord(t, store, contentstate.CanvasReference{CanvasURL: testCanvas + "a", ManifestURL: testManifest})
	mustRecord(t, store, contentstate.CanvasReference{CanvasURL: testCanvas + "b", ManifestURL: testManifest})
	if _, err := store.db.Exec(`UPDATE entries SET id = 'abc' || id`); err != nil {
		t.Fatalf("rewrite ids: %v", err)
	}
	if _, err := store.Get(context.Background(), "abc"); !errors.Is(err, ErrAmbiguousID) {
		t.Fatalf("expected ErrAmbiguousID, got %v", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	a := mustRecord(t, store, contentstate.CanvasReference{CanvasURL: testCanvas + "a", ManifestURL: testManifest})
	mustRecord(t, store, contentstate.CanvasReference{CanvasURL: testCanvas + "b", ManifestURL: testManifest})

	removed, err := store.Remove(ctx, a.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed.ID != a.ID {
		t.Fatalf("removed %s, want %s", removed.ID, a.ID)
	}
	if _, err := store.Remove(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("cleared %d, want 1", cleared)
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, suffix := range []string{"a", "b", "c", "d"} {
		mustRecord(t, store, contentstate.CanvasReference{CanvasURL: testCanvas + suffix, ManifestURL: testManifest})
	}

	if n, err := store.Prune(ctx, 0); err != nil || n != 0 {
		t.Fatalf("Prune(0) = %d, %v", n, err)
	}
	n, err := store.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 2 {
		t.Fatalf("pruned %d, want 2", n)
	}
	entries, _ := store.List(ctx, 0)
	if len(entries) != 2 || entries[0].CanvasURL != testCanvas+"d" || entries[1].CanvasURL != testCanvas+"c" {
		t.Fatalf("unexpected survivors: %v", ids(entries))
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec(`UPDATE schema_version SET version = 99`); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := OpenPath(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func ids(entries []*Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID+" "+e.CanvasURL)
	}
	return out
}
