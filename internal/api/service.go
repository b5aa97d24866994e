package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/batch"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/config"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/contentstate"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/history"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/logging"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/viewer"
)

// ErrHistoryDisabled indicates history operations were requested while
// history is turned off or no store is attached.
var ErrHistoryDisabled = errors.New("history is disabled")

// HistoryStore abstracts the history persistence the service needs.
type HistoryStore interface {
	Record(ctx context.Context, ref contentstate.CanvasReference, token string) (*history.Entry, error)
	List(ctx context.Context, limit int) ([]*history.Entry, error)
	Get(ctx context.Context, idOrPrefix string) (*history.Entry, error)
	Remove(ctx context.Context, idOrPrefix string) (*history.Entry, error)
	Clear(ctx context.Context) (int64, error)
	Prune(ctx context.Context, keep int) (int64, error)
	Count(ctx context.Context) (int, error)
}

// Service exposes codec operations returning API DTOs.
type Service struct {
	viewers    []viewer.Viewer
	store      HistoryStore
	maxEntries int
	batchOpts  batch.Options
	logger     *slog.Logger
}

// NewService binds cfg to an optional history store. A nil store, or
// history disabled in cfg, turns history operations off.
func NewService(cfg *config.Config, store HistoryStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "api")
	svc := &Service{
		viewers: viewer.FromConfig(cfg.Viewers),
		batchOpts: batch.Options{
			Workers:       cfg.Batch.Workers,
			MaxReferences: cfg.Batch.MaxReferences,
			Logger:        logger,
		},
		maxEntries: cfg.History.MaxEntries,
		logger:     logger,
	}
	if cfg.History.Enabled {
		svc.store = store
	}
	return svc
}

// Viewers returns the configured viewers.
func (s *Service) Viewers() []viewer.Viewer {
	return s.viewers
}

// HistoryEnabled reports whether a history store is attached.
func (s *Service) HistoryEnabled() bool {
	return s.store != nil
}

// Encode builds a token for req and records it in history unless asked not to.
func (s *Service) Encode(ctx context.Context, req EncodeRequest) (*EncodeResponse, error) {
	ref := req.Reference()
	state, err := contentstate.BuildReference(ref)
	if err != nil {
		return nil, err
	}
	token, err := contentstate.Encode(state)
	if err != nil {
		return nil, err
	}
	links, err := viewer.Links(s.viewers, token)
	if err != nil {
		return nil, err
	}

	resp := &EncodeResponse{
		Token:   token,
		Variant: state.Variant(),
		State:   state,
		Links:   links,
	}
	if s.store != nil && !req.NoHistory {
		resp.HistoryID = s.record(ctx, ref, token)
	}
	s.logger.DebugContext(ctx, "encoded content state",
		logging.String(logging.FieldEventType, "encode"),
		logging.String(logging.FieldVariant, string(resp.Variant)),
		logging.Int("token_length", len(token)),
	)
	return resp, nil
}

func (s *Service) record(ctx context.Context, ref contentstate.CanvasReference, token string) string {
	entry, err := s.store.Record(ctx, ref, token)
	if err != nil {
		logging.WarnWithContext(s.logger, "history record failed", "history_record",
			logging.Error(err),
			logging.String(logging.FieldImpact, "token was produced but not remembered"),
			logging.String(logging.FieldErrorHint, "check data_dir permissions or run contentstate status"),
		)
		return ""
	}
	if pruned, err := s.store.Prune(ctx, s.maxEntries); err != nil {
		s.logger.WarnContext(ctx, "history prune failed", logging.Error(err))
	} else if pruned > 0 {
		s.logger.DebugContext(ctx, "history pruned", logging.Int64("removed", pruned))
	}
	return entry.ID
}

// Decode unpacks token.
func (s *Service) Decode(ctx context.Context, req DecodeRequest) (*DecodeResponse, error) {
	text, err := contentstate.DecodeJSON(req.Token)
	if err != nil {
		return nil, err
	}
	state, err := contentstate.Decode(req.Token)
	if err != nil {
		return nil, err
	}
	links, err := viewer.Links(s.viewers, req.Token)
	if err != nil {
		return nil, err
	}
	resp := &DecodeResponse{
		Variant: state.Variant(),
		State:   state,
		JSON:    text,
		Links:   links,
	}
	if ref, ok := state.Reference(); ok {
		resp.Reference = &ref
	}
	return resp, nil
}

// Links validates token and returns viewer links for it.
func (s *Service) Links(ctx context.Context, token string) ([]viewer.Link, error) {
	if _, err := contentstate.DecodeJSON(token); err != nil {
		return nil, err
	}
	return viewer.Links(s.viewers, token)
}

// Batch encodes req.References. Item failures are reported per result.
func (s *Service) Batch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	results, err := s.RunBatch(ctx, req)
	if err != nil {
		return nil, err
	}
	return &BatchResponse{Summary: batch.Summarize(results), Results: batch.Records(results)}, nil
}

// RunBatch is Batch without the DTO conversion, for callers that render
// results themselves.
func (s *Service) RunBatch(ctx context.Context, req BatchRequest) ([]batch.Result, error) {
	opts := s.batchOpts
	if req.Workers > 0 {
		opts.Workers = req.Workers
	}
	return batch.Run(ctx, req.References, opts)
}

// History lists recorded tokens, most recently used first.
func (s *Service) History(ctx context.Context, limit int) ([]HistoryItem, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	entries, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	return FromHistoryEntries(entries, s.viewers), nil
}

// HistoryEntry fetches one recorded token by id or unambiguous id prefix.
func (s *Service) HistoryEntry(ctx context.Context, id string) (*HistoryItem, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	entry, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item := FromHistoryEntry(entry, s.viewers)
	return &item, nil
}

// RemoveHistory deletes one recorded token.
func (s *Service) RemoveHistory(ctx context.Context, id string) (*HistoryItem, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	entry, err := s.store.Remove(ctx, id)
	if err != nil {
		return nil, err
	}
	item := FromHistoryEntry(entry, s.viewers)
	return &item, nil
}

// ClearHistory deletes every recorded token.
func (s *Service) ClearHistory(ctx context.Context) (*ClearResponse, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	removed, err := s.store.Clear(ctx)
	if err != nil {
		return nil, err
	}
	return &ClearResponse{Removed: removed}, nil
}

// HistoryCount returns the number of recorded tokens, or zero when history is off.
func (s *Service) HistoryCount(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("history count: %w", err)
	}
	return count, nil
}
