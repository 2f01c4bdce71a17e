package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"customs-gateway/internal/domain/entity"
)

// AuditColumns is the header row of the threat audit file.
var AuditColumns = []string{
	"query", "ip_address", "latitude", "longitude",
	"threat_category", "threat_category_value", "timestamp", "actor",
}

// CSVAuditStore appends threat records to a CSV file. The file and its parent
// directory are created on first append. Each record is encoded in memory and
// written with one O_APPEND write under a mutex, so concurrent appends never
// interleave partial rows.
type CSVAuditStore struct {
	path string
	mu   sync.Mutex
}

func NewCSVAuditStore(path string) *CSVAuditStore {
	return &CSVAuditStore{path: path}
}

func (s *CSVAuditStore) Path() string {
	return s.path
}

func (s *CSVAuditStore) Append(_ context.Context, rec entity.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", entity.ErrAuditPersistence, err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrAuditPersistence, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrAuditPersistence, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		_ = w.Write(AuditColumns)
	}
	_ = w.Write(encodeAuditRecord(rec))
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %w", entity.ErrAuditPersistence, err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", entity.ErrAuditPersistence, err)
	}
	return nil
}

// List reads every record back, oldest first, keeping those that match filter.
// A missing file is an empty audit trail.
func (s *CSVAuditStore) List(_ context.Context, filter entity.AuditFilter) ([]entity.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(AuditColumns)

	var records []entity.AuditRecord
	for line := 1; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read audit file: %w", err)
		}
		if line == 1 && row[0] == AuditColumns[0] {
			continue
		}
		rec, err := decodeAuditRecord(row)
		if err != nil {
			return nil, fmt.Errorf("audit file line %d: %w", line, err)
		}
		if filter.Matches(rec) {
			records = append(records, rec)
		}
	}
	return records, nil
}

func encodeAuditRecord(rec entity.AuditRecord) []string {
	return []string{
		rec.Query,
		optionalString(rec.IPAddress),
		optionalFloat(rec.Latitude),
		optionalFloat(rec.Longitude),
		rec.ThreatCategory,
		rec.ThreatSeverity,
		rec.Timestamp.Format(time.RFC3339),
		rec.Actor,
	}
}

func decodeAuditRecord(row []string) (entity.AuditRecord, error) {
	ts, err := time.Parse(time.RFC3339, row[6])
	if err != nil {
		return entity.AuditRecord{}, fmt.Errorf("timestamp: %w", err)
	}
	lat, err := parseOptionalFloat(row[2])
	if err != nil {
		return entity.AuditRecord{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := parseOptionalFloat(row[3])
	if err != nil {
		return entity.AuditRecord{}, fmt.Errorf("longitude: %w", err)
	}
	rec := entity.AuditRecord{
		Query:          row[0],
		Latitude:       lat,
		Longitude:      lon,
		ThreatCategory: row[4],
		ThreatSeverity: row[5],
		Timestamp:      ts,
		Actor:          row[7],
	}
	if row[1] != "" {
		ip := row[1]
		rec.IPAddress = &ip
	}
	return rec, nil
}

func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
