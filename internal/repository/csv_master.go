package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"VixNav/internal/domain/errs"
	"VixNav/pkg/cache"
	applogger "VixNav/pkg/logger"
)

const timestampColumn = "timestamp"

// MasterCSV appends collection runs to master files under one data directory.
// Every read-modify-write holds a lock from the cache service.
type MasterCSV struct {
	dir     string
	locker  cache.Service
	lockTTL time.Duration
	logger  *applogger.Logger
}

func NewMasterCSV(dir string, locker cache.Service, lockTTL time.Duration, logger *applogger.Logger) *MasterCSV {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &MasterCSV{dir: dir, locker: locker, lockTTL: lockTTL, logger: logger}
}

// Dir returns the data directory.
func (m *MasterCSV) Dir() string {
	return m.dir
}

// Append replaces the rows of runTimestamp in file with rows and writes the result atomically.
// Existing rows are re-projected onto header by column name.
func (m *MasterCSV) Append(ctx context.Context, file string, header []string, rows [][]string, runTimestamp string) (string, error) {
	tsIdx := indexOf(header, timestampColumn)
	if tsIdx < 0 {
		return "", fmt.Errorf("append %s: header has no %s column", file, timestampColumn)
	}
	for i, r := range rows {
		if len(r) != len(header) {
			return "", fmt.Errorf("append %s: row %d has %d fields, want %d", file, i, len(r), len(header))
		}
	}

	path := filepath.Join(m.dir, file)
	lockKey := "lock:master:" + file
	if err := cache.Lock(ctx, m.locker, lockKey, m.lockTTL, m.lockTTL); err != nil {
		return "", fmt.Errorf("append %s: %w", file, err)
	}
	defer func() {
		if err := m.locker.Unlock(context.WithoutCancel(ctx), lockKey); err != nil {
			m.logger.Warn("master unlock failed", applogger.String("file", file), applogger.Error(err))
		}
	}()

	existing, err := readTable(path)
	if err != nil && !errors.Is(err, errs.ErrMissingData) {
		return "", fmt.Errorf("append %s: %w", file, err)
	}

	out := make([][]string, 0, len(rows)+len(existing.rows))
	dropped := 0
	for _, r := range existing.rows {
		if existing.get(r, timestampColumn) == runTimestamp {
			dropped++
			continue
		}
		out = append(out, existing.project(r, header))
	}
	out = append(out, rows...)

	if err := writeAtomic(path, header, out); err != nil {
		return "", fmt.Errorf("append %s: %w", file, err)
	}
	m.logger.Info("master updated",
		applogger.String("file", path),
		applogger.String("run", runTimestamp),
		applogger.Int("rows", len(rows)),
		applogger.Int("replaced", dropped),
	)
	return path, nil
}

// WriteSnapshot writes a standalone per-run file.
func (m *MasterCSV) WriteSnapshot(file string, header []string, rows [][]string) (string, error) {
	path := filepath.Join(m.dir, file)
	if err := writeAtomic(path, header, rows); err != nil {
		return "", fmt.Errorf("snapshot %s: %w", file, err)
	}
	return path, nil
}

func (m *MasterCSV) read(file string) (*table, error) {
	return readTable(filepath.Join(m.dir, file))
}

// table is a parsed CSV file addressed by column name.
type table struct {
	header []string
	idx    map[string]int
	rows   [][]string
}

func newTable(header []string, rows [][]string) *table {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return &table{header: header, idx: idx, rows: rows}
}

func (t *table) has(col string) bool {
	_, ok := t.idx[col]
	return ok
}

// column returns the first of names present in the header.
func (t *table) column(names ...string) (string, bool) {
	for _, n := range names {
		if t.has(n) {
			return n, true
		}
	}
	return "", false
}

func (t *table) get(row []string, col string) string {
	i, ok := t.idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) project(row []string, header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = t.get(row, h)
	}
	return out
}

// readTable returns MissingData when the file does not exist or has no header.
func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newTable(nil, nil), errs.MissingData("read csv", "%s does not exist", filepath.Base(path))
		}
		return newTable(nil, nil), err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return newTable(nil, nil), errs.InvalidData("read csv", "%s is malformed", filepath.Base(path)).Wrap(err)
	}
	if len(records) == 0 {
		return newTable(nil, nil), errs.MissingData("read csv", "%s is empty", filepath.Base(path))
	}
	return newTable(records[0], records[1:]), nil
}

func writeAtomic(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
