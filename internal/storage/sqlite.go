package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/san-kum/gravlab/internal/body"
	"github.com/san-kum/gravlab/internal/engine"
)

const framesSchema = `
CREATE TABLE IF NOT EXISTS frames (
	frame	INTEGER,
	id		INTEGER,
	x		REAL,
	y		REAL,
	vx		REAL,
	vy		REAL,
	mass	REAL,
	radius	REAL);
CREATE INDEX IF NOT EXISTS idx_frames_frame ON frames (frame, id);
`

const insertFrame = `INSERT INTO frames VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
const selectFrame = `SELECT id, x, y, vx, vy, mass, radius FROM frames WHERE frame = ? ORDER BY id ASC;`

// FrameRow is one body's state at one recorded frame.
type FrameRow struct {
	ID     uint64
	X, Y   float64
	VX, VY float64
	Mass   float64
	Radius float64
}

// Recorder streams per-frame body snapshots into a sqlite database.
// sqlite allows a single writer, so the recorder is driven synchronously
// from the run loop as a sim.Observer.
type Recorder struct {
	db   *sql.DB
	stmt *sql.Stmt
}

func OpenRecorder(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=OFF&_synchronous=OFF")
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	if _, err := db.Exec(framesSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create schema: %w", err)
	}
	stmt, err := db.Prepare(insertFrame)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Recorder{db: db, stmt: stmt}, nil
}

// OnStep implements sim.Observer: one transactional insert batch per
// frame.
func (r *Recorder) OnStep(frame int, bodies []*body.Body, _ engine.Metrics) {
	tx, err := r.db.Begin()
	if err != nil {
		return
	}
	for _, b := range bodies {
		if _, err = tx.Stmt(r.stmt).Exec(
			frame, b.ID, b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y, b.Mass, b.Radius,
		); err != nil {
			break
		}
	}
	if err != nil {
		tx.Rollback()
		return
	}
	tx.Commit()
}

// LoadFrame reads every body row recorded for one frame, ordered by id.
func (r *Recorder) LoadFrame(frame int) ([]FrameRow, error) {
	rows, err := r.db.Query(selectFrame, frame)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FrameRow
	for rows.Next() {
		var fr FrameRow
		if err := rows.Scan(&fr.ID, &fr.X, &fr.Y, &fr.VX, &fr.VY, &fr.Mass, &fr.Radius); err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

func (r *Recorder) Close() error {
	r.stmt.Close()
	return r.db.Close()
}
