// Package archive journals field activity to SQLite. The engine itself
// keeps no persistent state; the archive is written from public snapshot
// and result values and can replay experiences to rebuild a field.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Archive is the persistent journal backing a resonance field.
type Archive struct {
	db *sql.DB
}

// New creates/opens the journal database at path.
func New(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Single-process journal. One shared connection avoids writer lock
	// contention with SQLite.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	a := &Archive{db: db}
	if err := a.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *Archive) init() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA temp_store=MEMORY;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS experiences (
			wave_id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			step INTEGER NOT NULL,
			amplitude REAL NOT NULL,
			frequency REAL NOT NULL,
			keywords_json TEXT NOT NULL DEFAULT '[]',
			created_at_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS experiences_step_idx ON experiences(step);`,
		`CREATE TABLE IF NOT EXISTS crystals (
			id TEXT PRIMARY KEY,
			step INTEGER NOT NULL,
			stability REAL NOT NULL,
			members_json TEXT NOT NULL DEFAULT '[]',
			keywords_json TEXT NOT NULL DEFAULT '[]',
			created_at_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS insights (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			summary TEXT NOT NULL,
			confidence REAL NOT NULL,
			collapse REAL NOT NULL,
			evidence_json TEXT NOT NULL DEFAULT '[]',
			created_at_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS insights_created_idx ON insights(created_at_ms DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := a.db.Exec(stmt); err != nil {
			return fmt.Errorf("init archive schema: %w", err)
		}
	}
	return nil
}

// ExperienceRecord is one journaled wave insertion.
type ExperienceRecord struct {
	WaveID    string
	Text      string
	Step      int
	Amplitude float64
	Frequency float64
	Keywords  []string
	CreatedAt time.Time
}

// CrystalRecord is one journaled crystallization event.
type CrystalRecord struct {
	ID        string
	Step      int
	Stability float64
	Members   []string
	Keywords  []string
	CreatedAt time.Time
}

// InsightRecord is one journaled query result.
type InsightRecord struct {
	ID         string
	Query      string
	Summary    string
	Confidence float64
	Collapse   float64
	Evidence   []string
	CreatedAt  time.Time
}

// RecordExperience journals one insertion. Replaying the same wave ID
// overwrites the previous row, so re-running a recovery is harmless.
func (a *Archive) RecordExperience(ctx context.Context, rec ExperienceRecord) error {
	if strings.TrimSpace(rec.WaveID) == "" {
		return fmt.Errorf("record experience: empty wave_id")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := a.db.ExecContext(ctx, `
INSERT INTO experiences(wave_id, text, step, amplitude, frequency, keywords_json, created_at_ms)
VALUES(?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(wave_id) DO UPDATE SET
	amplitude = excluded.amplitude,
	frequency = excluded.frequency`,
		rec.WaveID, rec.Text, rec.Step, rec.Amplitude, rec.Frequency, encodeStrings(rec.Keywords), rec.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record experience: %w", err)
	}
	return nil
}

// RecordCrystal journals one crystal. Crystals are append-only upstream,
// so a duplicate ID is ignored.
func (a *Archive) RecordCrystal(ctx context.Context, rec CrystalRecord) error {
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("record crystal: empty id")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := a.db.ExecContext(ctx, `
INSERT INTO crystals(id, step, stability, members_json, keywords_json, created_at_ms)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING`,
		rec.ID, rec.Step, rec.Stability, encodeStrings(rec.Members), encodeStrings(rec.Keywords), rec.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record crystal: %w", err)
	}
	return nil
}

// RecordInsight journals one query result.
func (a *Archive) RecordInsight(ctx context.Context, rec InsightRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := a.db.ExecContext(ctx, `
INSERT INTO insights(id, query, summary, confidence, collapse, evidence_json, created_at_ms)
VALUES(?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Query, rec.Summary, rec.Confidence, rec.Collapse, encodeStrings(rec.Evidence), rec.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record insight: %w", err)
	}
	return nil
}

// ListExperiences returns every journaled insertion in step order, the
// order a recovery must replay them in.
func (a *Archive) ListExperiences(ctx context.Context) ([]ExperienceRecord, error) {
	rows, err := a.db.QueryContext(ctx, `
SELECT wave_id, text, step, amplitude, frequency, keywords_json, created_at_ms
FROM experiences
ORDER BY step ASC, created_at_ms ASC`)
	if err != nil {
		return nil, fmt.Errorf("list experiences: %w", err)
	}
	defer rows.Close()

	out := make([]ExperienceRecord, 0, 16)
	for rows.Next() {
		var rec ExperienceRecord
		var kwRaw string
		var createdMS int64
		if err := rows.Scan(&rec.WaveID, &rec.Text, &rec.Step, &rec.Amplitude, &rec.Frequency, &kwRaw, &createdMS); err != nil {
			return nil, fmt.Errorf("scan experience: %w", err)
		}
		rec.Keywords = decodeStrings(kwRaw)
		rec.CreatedAt = time.UnixMilli(createdMS)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate experiences: %w", err)
	}
	return out, nil
}

// ListCrystals returns journaled crystals in formation order.
func (a *Archive) ListCrystals(ctx context.Context) ([]CrystalRecord, error) {
	rows, err := a.db.QueryContext(ctx, `
SELECT id, step, stability, members_json, keywords_json, created_at_ms
FROM crystals
ORDER BY step ASC, created_at_ms ASC`)
	if err != nil {
		return nil, fmt.Errorf("list crystals: %w", err)
	}
	defer rows.Close()

	out := make([]CrystalRecord, 0, 8)
	for rows.Next() {
		var rec CrystalRecord
		var membersRaw, kwRaw string
		var createdMS int64
		if err := rows.Scan(&rec.ID, &rec.Step, &rec.Stability, &membersRaw, &kwRaw, &createdMS); err != nil {
			return nil, fmt.Errorf("scan crystal: %w", err)
		}
		rec.Members = decodeStrings(membersRaw)
		rec.Keywords = decodeStrings(kwRaw)
		rec.CreatedAt = time.UnixMilli(createdMS)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crystals: %w", err)
	}
	return out, nil
}

// RecentInsights returns the most recent journaled queries, newest first.
func (a *Archive) RecentInsights(ctx context.Context, limit int) ([]InsightRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := a.db.QueryContext(ctx, `
SELECT id, query, summary, confidence, collapse, evidence_json, created_at_ms
FROM insights
ORDER BY created_at_ms DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent insights: %w", err)
	}
	defer rows.Close()

	out := make([]InsightRecord, 0, limit)
	for rows.Next() {
		var rec InsightRecord
		var evRaw string
		var createdMS int64
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Summary, &rec.Confidence, &rec.Collapse, &evRaw, &createdMS); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		rec.Evidence = decodeStrings(evRaw)
		rec.CreatedAt = time.UnixMilli(createdMS)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate insights: %w", err)
	}
	return out, nil
}

// CountExperiences reports the number of journaled insertions.
func (a *Archive) CountExperiences(ctx context.Context) (int, error) {
	row := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM experiences`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count experiences: %w", err)
	}
	return n, nil
}

func encodeStrings(ss []string) string {
	if len(ss) == 0 {
		return "[]"
	}
	b, err := json.Marshal(ss)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeStrings(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var ss []string
	if err := json.Unmarshal([]byte(raw), &ss); err != nil {
		return nil
	}
	return ss
}
