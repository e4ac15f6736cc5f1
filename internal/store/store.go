package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/nerrad567/vacuum-logger/internal/gauge"
	"github.com/nerrad567/vacuum-logger/internal/infrastructure/database"
	_ "github.com/nerrad567/vacuum-logger/migrations" // registers the pressure_series schema
)

// Config configures a Store.
type Config struct {
	// Path is the SQLite file. Parent directories are created on first append.
	Path string

	// BusyTimeout is the lock wait in seconds when another process (or the
	// status API) holds the file.
	BusyTimeout int
}

// Store appends readings to one series file.
//
// Thread Safety:
//   - Append is serialised; readers may run concurrently with it.
type Store struct {
	cfg Config

	mu        sync.Mutex
	lastIndex int
	hasLast   bool
}

// Row is one position of the series.
type Row struct {
	Position   int     `json:"position"`
	Index      int     `json:"index"`
	Timestamp  float64 `json:"timestamp"`
	Ionisation float64 `json:"ionisation"`
	CG1        float64 `json:"cg1"`
	CG2        float64 `json:"cg2"`
}

// Series is the whole file as five parallel sequences.
type Series struct {
	Index      []int
	Timestamp  []float64
	Ionisation []float64
	CG1        []float64
	CG2        []float64
}

// Len returns the common length of the sequences.
func (s *Series) Len() int {
	return len(s.Index)
}

// New creates a Store. No I/O happens until the first call.
func New(cfg Config) *Store {
	return &Store{cfg: cfg}
}

// Path returns the series file path.
func (s *Store) Path() string {
	return s.cfg.Path
}

// Append writes one record at the tail of the series.
//
// The file is opened, migrated, written in one transaction and closed
// before Append returns.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - index: Tick number; must exceed the previous index appended here
//   - elapsedSeconds: Seconds since the poll loop started
//   - ion, cg1, cg2: Channel results, encoded with the sentinel policy
//
// Returns:
//   - error: ErrIndexNotIncreasing, ErrInvalidTimestamp, or a database error
func (s *Store) Append(ctx context.Context, index int, elapsedSeconds float64, ion, cg1, cg2 gauge.Result) error {
	if s.cfg.Path == "" {
		return ErrNoPath
	}
	if elapsedSeconds < 0 || math.IsNaN(elapsedSeconds) || math.IsInf(elapsedSeconds, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTimestamp, elapsedSeconds)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasLast && index <= s.lastIndex {
		return fmt.Errorf("%w: %d after %d", ErrIndexNotIncreasing, index, s.lastIndex)
	}

	ionV, cg1V, cg2V := encodeChannels(ion, cg1, cg2)

	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // Write already committed or rolled back

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("creating series schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	var position int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position) + 1, 0) FROM pressure_series",
	).Scan(&position); err != nil {
		return fmt.Errorf("finding series tail: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pressure_series (position, "Index", Timestamp, Ionisation, CG1, CG2)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		position, index, elapsedSeconds, ionV, cg1V, cg2V,
	); err != nil {
		return fmt.Errorf("appending row %d: %w", position, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing row %d: %w", position, err)
	}

	s.lastIndex = index
	s.hasLast = true
	return nil
}

// WriteReading appends r. It lets a Store act as a poller sink.
func (s *Store) WriteReading(ctx context.Context, r gauge.Reading) error {
	return s.Append(ctx, r.Iteration, r.ElapsedSeconds(), r.Ion, r.CG1, r.CG2)
}

// Len returns the number of records in the file. A missing file has none.
func (s *Store) Len(ctx context.Context) (int, error) {
	db, ok, err := s.openExisting(ctx)
	if err != nil || !ok {
		return 0, err
	}
	defer db.Close() //nolint:errcheck // Read-only use

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pressure_series").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting rows: %w", err)
	}
	return n, nil
}

// Series reads the whole file back as five sequences in position order.
func (s *Store) Series(ctx context.Context) (*Series, error) {
	rows, err := s.query(ctx, `SELECT position, "Index", Timestamp, Ionisation, CG1, CG2
		FROM pressure_series ORDER BY position`)
	if err != nil {
		return nil, err
	}

	series := &Series{
		Index:      make([]int, 0, len(rows)),
		Timestamp:  make([]float64, 0, len(rows)),
		Ionisation: make([]float64, 0, len(rows)),
		CG1:        make([]float64, 0, len(rows)),
		CG2:        make([]float64, 0, len(rows)),
	}
	for _, r := range rows {
		series.Index = append(series.Index, r.Index)
		series.Timestamp = append(series.Timestamp, r.Timestamp)
		series.Ionisation = append(series.Ionisation, r.Ionisation)
		series.CG1 = append(series.CG1, r.CG1)
		series.CG2 = append(series.CG2, r.CG2)
	}
	return series, nil
}

// Tail returns the last n rows, oldest first.
func (s *Store) Tail(ctx context.Context, n int) ([]Row, error) {
	if n <= 0 {
		return []Row{}, nil
	}
	return s.query(ctx, `SELECT position, "Index", Timestamp, Ionisation, CG1, CG2
		FROM (SELECT * FROM pressure_series ORDER BY position DESC LIMIT ?)
		ORDER BY position`, n)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Row, error) {
	db, ok, err := s.openExisting(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Row{}, nil
	}
	defer db.Close() //nolint:errcheck // Read-only use

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying series: %w", err)
	}
	defer rows.Close()

	result := []Row{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Position, &r.Index, &r.Timestamp, &r.Ionisation, &r.CG1, &r.CG2); err != nil {
			return nil, fmt.Errorf("scanning series row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating series: %w", err)
	}
	return result, nil
}

func (s *Store) open(ctx context.Context) (*database.DB, error) {
	db, err := database.Open(ctx, database.Config{
		Path:        s.cfg.Path,
		BusyTimeout: s.cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening series file: %w", err)
	}
	return db, nil
}

// openExisting opens the file for reading. ok is false when the file or
// the series table does not exist yet; readers never create either.
func (s *Store) openExisting(ctx context.Context) (db *database.DB, ok bool, err error) {
	if s.cfg.Path == "" {
		return nil, false, ErrNoPath
	}
	if _, err := os.Stat(s.cfg.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("checking series file: %w", err)
	}

	db, err = s.open(ctx)
	if err != nil {
		return nil, false, err
	}

	var name string
	err = db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='pressure_series'",
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		db.Close() //nolint:errcheck // Nothing to read
		return nil, false, nil
	}
	if err != nil {
		db.Close() //nolint:errcheck // Error path
		return nil, false, fmt.Errorf("checking series table: %w", err)
	}
	return db, true, nil
}
