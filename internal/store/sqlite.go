package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens the database at path. Use ":memory:" for tests.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite is not concurrent for writes, and an in-memory database lives
	// on a single connection.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded goose migrations.
func (s *SQLiteDB) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// --------- Profiles ---------

// CreateProfile inserts a profile, assigning an ID and timestamps when unset.
func (s *SQLiteDB) CreateProfile(ctx context.Context, p *Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, kind, mode, seed, seq_cursor, range_min, range_max, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.Kind, p.Mode, p.Seed, p.Cursor, p.RangeMin, p.RangeMax, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

const profileColumns = `id, kind, mode, seed, seq_cursor, range_min, range_max, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*Profile, error) {
	var p Profile
	var id string
	if err := row.Scan(&id, &p.Kind, &p.Mode, &p.Seed, &p.Cursor, &p.RangeMin, &p.RangeMax, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("profile id %q: %w", id, err)
	}
	p.ID = parsed
	return &p, nil
}

// GetProfile returns the profile or ErrNotFound.
func (s *SQLiteDB) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id.String())
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// ListProfiles returns profiles, newest first.
func (s *SQLiteDB) ListProfiles(ctx context.Context, limit, offset int) ([]Profile, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// execQuerier is satisfied by *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// IncrementCursor moves the profile cursor from `from` to from+1 and returns
// the new value. It fails with ErrCursorMoved when the stored cursor is no
// longer `from`, so two callers that read the same cursor cannot both advance.
func (s *SQLiteDB) IncrementCursor(ctx context.Context, profileID string, from int64) (int64, error) {
	return incrementCursor(ctx, s.db, profileID, from)
}

func incrementCursor(ctx context.Context, q execQuerier, profileID string, from int64) (int64, error) {
	var cursor int64
	err := q.QueryRowContext(ctx,
		`UPDATE profiles SET seq_cursor = seq_cursor + 1, updated_at = ?
		 WHERE id = ? AND seq_cursor = ? RETURNING seq_cursor`,
		time.Now().UTC(), profileID, from).Scan(&cursor)
	if errors.Is(err, sql.ErrNoRows) {
		var one int
		err = q.QueryRowContext(ctx, `SELECT 1 FROM profiles WHERE id = ?`, profileID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		if err != nil {
			return 0, fmt.Errorf("increment cursor: %w", err)
		}
		return 0, ErrCursorMoved
	}
	if err != nil {
		return 0, fmt.Errorf("increment cursor: %w", err)
	}
	return cursor, nil
}

// RecordSwipe stores rec and advances the profile cursor from `from` in one
// transaction. Either both happen or neither does.
func (s *SQLiteDB) RecordSwipe(ctx context.Context, rec *JudgementRecord, from int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("record swipe: %w", err)
	}
	defer tx.Rollback()

	if err := saveJudgement(ctx, tx, rec); err != nil {
		return 0, err
	}
	cursor, err := incrementCursor(ctx, tx, rec.ProfileID.String(), from)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("record swipe: commit: %w", err)
	}
	return cursor, nil
}

// --------- Judgements ---------

// SaveJudgement inserts or replaces the judgement for (profile, entity).
// The first creation time is kept on update.
func (s *SQLiteDB) SaveJudgement(ctx context.Context, rec *JudgementRecord) error {
	return saveJudgement(ctx, s.db, rec)
}

func saveJudgement(ctx context.Context, q execQuerier, rec *JudgementRecord) error {
	if rec.EntityID == "" {
		return errors.New("save judgement: missing entity id")
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return fmt.Errorf("save judgement: encode tags: %w", err)
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	_, err = q.ExecContext(ctx, `
		INSERT INTO judgements (profile_id, entity_id, judgement, name, media_url, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile_id, entity_id) DO UPDATE SET
			judgement = excluded.judgement,
			name = CASE WHEN excluded.name != '' THEN excluded.name ELSE judgements.name END,
			media_url = CASE WHEN excluded.media_url != '' THEN excluded.media_url ELSE judgements.media_url END,
			tags = CASE WHEN excluded.tags != '[]' THEN excluded.tags ELSE judgements.tags END,
			updated_at = excluded.updated_at`,
		rec.ProfileID.String(), rec.EntityID, int(rec.Judgement), rec.Name, rec.MediaURL, string(tags),
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("save judgement: %w", ErrNotFound)
		}
		return fmt.Errorf("save judgement: %w", err)
	}
	return nil
}

const judgementColumns = `profile_id, entity_id, judgement, name, media_url, tags, created_at, updated_at`

func scanJudgement(row interface{ Scan(...any) error }) (*JudgementRecord, error) {
	var (
		rec      JudgementRecord
		pid      string
		verdict  int
		tagsJSON string
	)
	if err := row.Scan(&pid, &rec.EntityID, &verdict, &rec.Name, &rec.MediaURL, &tagsJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(pid)
	if err != nil {
		return nil, fmt.Errorf("judgement profile id %q: %w", pid, err)
	}
	rec.ProfileID = id
	rec.Judgement = Judgement(verdict)
	if err := json.Unmarshal([]byte(tagsJSON), &rec.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &rec, nil
}

// GetJudgement returns the judgement or ErrNotFound.
func (s *SQLiteDB) GetJudgement(ctx context.Context, profileID uuid.UUID, entityID string) (*JudgementRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+judgementColumns+` FROM judgements WHERE profile_id = ? AND entity_id = ?`,
		profileID.String(), entityID)
	rec, err := scanJudgement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get judgement: %w", err)
	}
	return rec, nil
}

// ListJudgements retrieves judgements with pagination, most recent first.
func (s *SQLiteDB) ListJudgements(ctx context.Context, q JudgementsQuery) (*JudgementsPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 || q.PerPage > 500 {
		q.PerPage = 50
	}

	where := []string{"profile_id = ?"}
	args := []any{q.ProfileID.String()}
	if q.Judgement != nil {
		where = append(where, "judgement = ?")
		args = append(args, int(*q.Judgement))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM judgements WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count judgements: %w", err)
	}

	offset := (q.Page - 1) * q.PerPage
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+judgementColumns+` FROM judgements WHERE `+clause+`
		ORDER BY updated_at DESC, entity_id ASC LIMIT ? OFFSET ?`,
		append(args, q.PerPage, offset)...)
	if err != nil {
		return nil, fmt.Errorf("list judgements: %w", err)
	}
	defer rows.Close()

	page := &JudgementsPage{
		Judgements: []JudgementRecord{},
		TotalCount: total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: int(math.Ceil(float64(total) / float64(q.PerPage))),
	}
	for rows.Next() {
		rec, err := scanJudgement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan judgement: %w", err)
		}
		page.Judgements = append(page.Judgements, *rec)
	}
	return page, rows.Err()
}

// AllJudgements returns every judgement of a profile ordered by entity id.
func (s *SQLiteDB) AllJudgements(ctx context.Context, profileID uuid.UUID) ([]JudgementRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+judgementColumns+` FROM judgements WHERE profile_id = ? ORDER BY entity_id ASC`,
		profileID.String())
	if err != nil {
		return nil, fmt.Errorf("all judgements: %w", err)
	}
	defer rows.Close()

	var out []JudgementRecord
	for rows.Next() {
		rec, err := scanJudgement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan judgement: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// --------- helpers ---------

func isConstraintErr(err error) bool {
	// modernc sqlite reports "constraint failed" in the message.
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "constraint failed")
}
