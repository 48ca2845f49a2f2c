// Package store persists range builds in SQLite so the API can serve build
// history and the service can restart without rescanning the source folder.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rebrag/GTOLite-Helper-Script/internal/database"
	"github.com/rebrag/GTOLite-Helper-Script/internal/nodes"
	"github.com/rebrag/GTOLite-Helper-Script/internal/rng"
)

// schema is applied at startup. Strategy rows are keyed by
// (build_id, node, hand, action) so re-saving a build is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS builds (
    id          TEXT PRIMARY KEY,
    built_at    INTEGER NOT NULL,
    source_dir  TEXT NOT NULL,
    file_count  INTEGER NOT NULL DEFAULT 0,
    node_count  INTEGER NOT NULL DEFAULT 0,
    hand_count  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS strategies (
    build_id  TEXT NOT NULL REFERENCES builds(id) ON DELETE CASCADE,
    node      TEXT NOT NULL,
    hand      TEXT NOT NULL,
    action    TEXT NOT NULL,
    weight    REAL NOT NULL,
    ev        REAL NOT NULL,
    PRIMARY KEY (build_id, node, hand, action)
);

CREATE INDEX IF NOT EXISTS idx_strategies_node ON strategies(build_id, node);
`

// BuildRecord is one row of build history.
type BuildRecord struct {
	ID        string    `json:"id"`
	BuiltAt   time.Time `json:"built_at"`
	SourceDir string    `json:"source_dir"`
	FileCount int       `json:"file_count"`
	NodeCount int       `json:"node_count"`
	HandCount int       `json:"hand_count"`
}

// Repository handles build persistence.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new build repository.
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "builds").Logger(),
	}
}

// Init applies the schema.
func (r *Repository) Init() error {
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply builds schema: %w", err)
	}
	return nil
}

// SaveBuild stores a collection and its build metadata in one transaction.
func (r *Repository) SaveBuild(col *nodes.Collection, sourceDir string, fileCount int) error {
	return database.WithTransaction(r.db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO builds (id, built_at, source_dir, file_count, node_count, hand_count)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				built_at = excluded.built_at,
				source_dir = excluded.source_dir,
				file_count = excluded.file_count,
				node_count = excluded.node_count,
				hand_count = excluded.hand_count
		`, col.BuildID, col.BuiltAt.Unix(), sourceDir, fileCount, len(col.Nodes), col.HandCount())
		if err != nil {
			return fmt.Errorf("failed to insert build %s: %w", col.BuildID, err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO strategies (build_id, node, hand, action, weight, ev)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(build_id, node, hand, action) DO UPDATE SET
				weight = excluded.weight,
				ev = excluded.ev
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare strategy insert: %w", err)
		}
		defer stmt.Close()

		for _, nodeID := range col.NodeIDs() {
			node := col.Nodes[nodeID]
			for hand, strategy := range node.Hands {
				for action, s := range strategy {
					if _, err := stmt.Exec(col.BuildID, nodeID, hand, string(action), s.Weight, s.EV); err != nil {
						return fmt.Errorf("failed to insert strategy %s/%s/%s: %w", nodeID, hand, action, err)
					}
				}
			}
		}

		return nil
	})
}

// LatestBuild returns the most recent build record, or nil when no build
// has been saved yet.
func (r *Repository) LatestBuild() (*BuildRecord, error) {
	row := r.db.QueryRow(`
		SELECT id, built_at, source_dir, file_count, node_count, hand_count
		FROM builds ORDER BY built_at DESC, id DESC LIMIT 1
	`)

	rec, err := scanBuild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest build: %w", err)
	}
	return rec, nil
}

// ListBuilds returns recent build records, newest first.
func (r *Repository) ListBuilds(limit int) ([]BuildRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`
		SELECT id, built_at, source_dir, file_count, node_count, hand_count
		FROM builds ORDER BY built_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	var records []BuildRecord
	for rows.Next() {
		rec, err := scanBuild(rows)
		if err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan build row")
			continue
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// LoadCollection reconstructs a saved collection from its strategy rows.
// Returns nil without error when the build id is unknown.
func (r *Repository) LoadCollection(buildID string) (*nodes.Collection, error) {
	row := r.db.QueryRow(`SELECT id, built_at, source_dir, file_count, node_count, hand_count FROM builds WHERE id = ?`, buildID)
	rec, err := scanBuild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get build %s: %w", buildID, err)
	}

	rows, err := r.db.Query(`SELECT node, hand, action, weight, ev FROM strategies WHERE build_id = ?`, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load strategies for build %s: %w", buildID, err)
	}
	defer rows.Close()

	col := &nodes.Collection{
		BuildID: rec.ID,
		BuiltAt: rec.BuiltAt,
		Nodes:   make(map[string]*nodes.NodeStrategies),
	}

	for rows.Next() {
		var nodeID, hand, action string
		var weight, ev float64
		if err := rows.Scan(&nodeID, &hand, &action, &weight, &ev); err != nil {
			return nil, fmt.Errorf("failed to scan strategy row: %w", err)
		}

		node, ok := col.Nodes[nodeID]
		if !ok {
			node = &nodes.NodeStrategies{ID: nodeID, Hands: make(map[string]nodes.HandStrategy)}
			col.Nodes[nodeID] = node
		}
		strategy, ok := node.Hands[hand]
		if !ok {
			strategy = make(nodes.HandStrategy)
			node.Hands[hand] = strategy
		}
		strategy[rng.Action(action)] = nodes.ActionStrategy{Weight: weight, EV: ev}
	}

	return col, rows.Err()
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBuild(s scanner) (*BuildRecord, error) {
	var rec BuildRecord
	var builtAt int64
	if err := s.Scan(&rec.ID, &builtAt, &rec.SourceDir, &rec.FileCount, &rec.NodeCount, &rec.HandCount); err != nil {
		return nil, err
	}
	rec.BuiltAt = time.Unix(builtAt, 0).UTC()
	return &rec, nil
}
