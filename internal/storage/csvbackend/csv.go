package csvbackend

import (
	"context"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/FranksOps/vantage/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu   sync.Mutex
	file *os.File
}

// columns defines the CSV column order. The intelligence blob is base64
// encoded so embedded commas and newlines survive.
var columns = []string{
	"id",
	"domain",
	"generated_at",
	"intelligence_base64",
}

// New creates a new CSV-backed storage.Backend.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("csvbackend: %w", err)
	}

	// Write the header row if the file is empty
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("csvbackend: %w", err)
	}

	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(columns); err != nil {
			f.Close()
			return nil, fmt.Errorf("csvbackend: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("csvbackend: %w", err)
		}
	}

	return &csvBackend{file: f}, nil
}

func (b *csvBackend) Save(ctx context.Context, report *storage.Report) error {
	record := []string{
		report.ID,
		report.Domain,
		report.GeneratedAt.Format(time.RFC3339Nano),
		base64.StdEncoding.EncodeToString(report.Intelligence),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Ensure we're at the end of the file for appending
	if _, err := b.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("csvbackend: %w", err)
	}

	w := csv.NewWriter(b.file)
	if err := w.Write(record); err != nil {
		return fmt.Errorf("csvbackend: %w", err)
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("csvbackend: %w", err)
	}

	return nil
}

func (b *csvBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Report, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("csvbackend: %w", err)
	}
	defer func() {
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	r := csv.NewReader(b.file)

	// Skip the header row
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return []*storage.Report{}, nil
		}
		return nil, fmt.Errorf("csvbackend: %w", err)
	}

	var matched []*storage.Report

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvbackend: %w", err)
		}

		if len(record) != len(columns) {
			continue // skip malformed rows
		}

		generatedAt, _ := time.Parse(time.RFC3339Nano, record[2])
		intelligence, _ := base64.StdEncoding.DecodeString(record[3])

		rep := &storage.Report{
			ID:           record[0],
			Domain:       record[1],
			GeneratedAt:  generatedAt,
			Intelligence: intelligence,
		}

		if filter.Domain != "" && rep.Domain != filter.Domain {
			continue
		}
		if filter.Since != nil && rep.GeneratedAt.Before(*filter.Since) {
			continue
		}

		matched = append(matched, rep)
	}

	// Order by generated_at DESC (reverse insertion order)
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*storage.Report{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	return matched, nil
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
