package testsupport

import (
	"context"
	"testing"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/config"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/contentstate"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/history"
)

// MustOpenStore opens a history.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordReference encodes ref and records it in store.
func RecordReference(t testing.TB, store *history.Store, ref contentstate.CanvasReference) *history.Entry {
	t.Helper()

	token, err := contentstate.EncodeReference(ref)
	if err != nil {
		t.Fatalf("EncodeReference: %v", err)
	}
	entry, err := store.Record(context.Background(), ref, token)
	if err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	return entry
}
