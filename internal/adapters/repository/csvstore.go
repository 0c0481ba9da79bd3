package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/okian/racebet/internal/domain/model"
	"github.com/okian/racebet/pkg/metrics"
)

// csvHeader is the persisted column layout.
var csvHeader = []string{"Game", "Round", "1st", "2nd", "3rd", "4th"} //nolint:gochecknoglobals // fixed file layout

const csvColumns = 2 + model.Positions

// CSVStore keeps the history in a single CSV file.
type CSVStore struct {
	mu   sync.Mutex
	path string
	opts options
}

var _ Store = (*CSVStore)(nil)

// NewCSVStore returns a store backed by the file at path. The file is
// created on first Load when missing.
func NewCSVStore(path string, opts ...Option) *CSVStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &CSVStore{path: path, opts: o}
}

// Path returns the backing file path.
func (s *CSVStore) Path() string { return s.path }

// Load reads the file. A missing file is created with only the header row.
func (s *CSVStore) Load(ctx context.Context) (model.Table, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("load", msSince(start)) }()

	if err := ctx.Err(); err != nil {
		return model.Table{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.writeLocked(model.Table{}); err != nil {
			metrics.RecordStoreError("load")
			return model.Table{}, err
		}
		return model.Table{}, nil
	}
	if err != nil {
		metrics.RecordStoreError("load")
		return model.Table{}, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	t, err := decodeCSV(f)
	if err != nil {
		metrics.RecordStoreError("load")
		return model.Table{}, fmt.Errorf("%s: %w", s.path, err)
	}
	return t, nil
}

// Persist rewrites the file with t via a temporary file and rename.
func (s *CSVStore) Persist(ctx context.Context, t model.Table) error {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("persist", msSince(start)) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeLocked(t); err != nil {
		metrics.RecordStoreError("persist")
		return err
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Persist.
func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) writeLocked(t model.Table) (err error) {
	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", s.path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = encodeCSV(tmp, t); err != nil {
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Chmod(s.opts.fileMode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename into %s: %w", s.path, err)
	}
	return nil
}

func encodeCSV(w io.Writer, t model.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	record := make([]string, csvColumns)
	for _, r := range t.Rows() {
		record[0] = ""
		if r.HasGame() {
			record[0] = strconv.Itoa(int(r.Game))
		}
		record[1] = strconv.Itoa(r.Round)
		for i, id := range r.Ranks {
			record[2+i] = strconv.Itoa(int(id))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func decodeCSV(r io.Reader) (model.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = csvColumns
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return model.Table{}, nil
	}
	if err != nil {
		return model.Table{}, malformed(1, err)
	}
	if !slices.Equal(header, csvHeader) {
		return model.Table{}, malformed(1, fmt.Errorf("unexpected header %v", header))
	}

	var rows []model.RaceResult
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line, _ := cr.FieldPos(0)
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return model.Table{}, malformed(line, err)
		}
		row, err := parseRecord(record)
		if err != nil {
			return model.Table{}, malformed(line, err)
		}
		rows = append(rows, row)
	}
	return model.NewTable(rows...), nil
}

func parseRecord(record []string) (model.RaceResult, error) {
	var row model.RaceResult
	if record[0] != "" {
		game, err := parseInt(record[0])
		if err != nil {
			return row, fmt.Errorf("game: %w", err)
		}
		if game < 1 {
			return row, fmt.Errorf("game: %d is not a game number; leave the cell empty for rows outside a game", game)
		}
		row.Game = model.GameID(game)
	}
	round, err := parseInt(record[1])
	if err != nil {
		return row, fmt.Errorf("round: %w", err)
	}
	row.Round = round
	for i := range model.Positions {
		id, err := parseInt(record[2+i])
		if err != nil {
			return row, fmt.Errorf("%s: %w", csvHeader[2+i], err)
		}
		row.Ranks[i] = model.CompetitorID(id)
	}
	return row, nil
}

// parseInt accepts plain integers and integral floats such as "3.0", which
// dataframe writers emit for columns holding empty cells.
func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err == nil {
		return n, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || f != math.Trunc(f) {
		return 0, err
	}
	return int(f), nil
}

func malformed(line int, err error) error {
	return fmt.Errorf("%w: line %d: %w", ErrMalformedRecord, line, err)
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
