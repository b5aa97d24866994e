package history

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/contentstate"
)

// Entry is one recorded token.
type Entry struct {
	ID          string               `json:"id"`
	Digest      string               `json:"digest"`
	Token       string               `json:"token"`
	Variant     contentstate.Variant `json:"variant"`
	CanvasURL   string               `json:"canvas"`
	ManifestURL string               `json:"manifest"`
	Target      string               `json:"target,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	LastUsedAt  time.Time            `json:"last_used_at"`
	UseCount    int                  `json:"use_count"`
}

// Reference returns the three-field form the entry was built from.
func (e Entry) Reference() contentstate.CanvasReference {
	return contentstate.CanvasReference{CanvasURL: e.CanvasURL, ManifestURL: e.ManifestURL, Target: e.Target}
}

// Timestamps are fixed width so the text column sorts chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const entryColumns = "id, digest, token, variant, canvas_url, manifest_url, target, created_at, last_used_at, use_count"

// Digest returns the hex BLAKE3-256 digest used to deduplicate tokens.
func Digest(token string) string {
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Record stores token for ref, or bumps the use count when the same token is
// already present.
func (s *Store) Record(ctx context.Context, ref contentstate.CanvasReference, token string) (*Entry, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("token is empty")
	}
	ctx = ensureContext(ctx)
	variant := contentstate.VariantCanvas
	target := ""
	if ref.HasTarget() {
		variant = contentstate.VariantAnnotation
		target = ref.Target
	}
	digest := Digest(token)
	timestamp := s.now().UTC().Format(timeLayout)

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO entries (
            id, digest, token, variant, canvas_url, manifest_url, target,
            created_at, last_used_at, use_count
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
        ON CONFLICT(digest) DO UPDATE SET
            use_count = use_count + 1,
            last_used_at = excluded.last_used_at`,
		uuid.NewString(),
		digest,
		token,
		string(variant),
		ref.CanvasURL,
		ref.ManifestURL,
		nullableString(target),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("record entry: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE digest = ?`, digest)
	entry, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("reload entry: %w", err)
	}
	return entry, nil
}

// List returns entries most recently used first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]*Entry, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + entryColumns + ` FROM entries ORDER BY last_used_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Get returns the entry whose id equals idOrPrefix or, failing that, the
// single entry whose id starts with it.
func (s *Store) Get(ctx context.Context, idOrPrefix string) (*Entry, error) {
	ctx = ensureContext(ctx)
	key := strings.ToLower(strings.TrimSpace(idOrPrefix))
	if key == "" {
		return nil, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, key)
	entry, err := scanEntry(row)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM entries WHERE substr(id, 1, length(?)) = ? LIMIT 2`,
		key,
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("get entry by prefix: %w", err)
	}
	defer rows.Close()

	var matches []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, idOrPrefix)
	}
}

// Remove deletes the entry Get would return for idOrPrefix.
func (s *Store) Remove(ctx context.Context, idOrPrefix string) (*Entry, error) {
	entry, err := s.Get(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	if _, err := s.execWithRetry(ctx, `DELETE FROM entries WHERE id = ?`, entry.ID); err != nil {
		return nil, fmt.Errorf("remove entry: %w", err)
	}
	return entry, nil
}

// Clear deletes every entry and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM entries`)
	if err != nil {
		return 0, fmt.Errorf("clear entries: %w", err)
	}
	return res.RowsAffected()
}

// Prune keeps the keep most recently used entries and deletes the rest.
// A keep <= 0 disables pruning.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM entries WHERE id NOT IN (
            SELECT id FROM entries ORDER BY last_used_at DESC, rowid DESC LIMIT ?
        )`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune entries: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry      Entry
		variant    string
		target     sql.NullString
		createdRaw string
		usedRaw    string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.Digest,
		&entry.Token,
		&variant,
		&entry.CanvasURL,
		&entry.ManifestURL,
		&target,
		&createdRaw,
		&usedRaw,
		&entry.UseCount,
	); err != nil {
		return nil, err
	}
	entry.Variant = contentstate.Variant(variant)
	entry.Target = target.String
	entry.CreatedAt = parseTime(createdRaw)
	entry.LastUsedAt = parseTime(usedRaw)
	return &entry, nil
}

func parseTime(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	return time.Time{}
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
