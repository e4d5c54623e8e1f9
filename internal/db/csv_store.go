package db

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spacesedan/reviewpulse/internal/models"
)

const ReviewColumn = "review"

var (
	generalHeader = []string{"review", "label", "score"}
	aspectHeader  = []string{"review", "aspect", "label", "score"}
)

// ReadReviews loads the review column of a CSV file. Other columns are
// ignored and blank cells are skipped.
func ReadReviews(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, models.NewInputError("source file %s does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return readReviews(f, path)
}

func readReviews(r io.Reader, name string) ([]string, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, models.NewInputError("%s is empty, expected a %q column", name, ReviewColumn)
	}
	if err != nil {
		return nil, models.NewInputError("%s is not valid CSV: %v", name, err)
	}

	column := -1
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == ReviewColumn {
			column = i
			break
		}
	}
	if column < 0 {
		return nil, models.NewInputError("%s has no %q column", name, ReviewColumn)
	}

	var reviews []string
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, models.NewInputError("%s is not valid CSV: %v", name, err)
		}
		if strings.TrimSpace(record[column]) == "" {
			skipped++
			continue
		}
		reviews = append(reviews, record[column])
	}

	if skipped > 0 {
		slog.Warn("[CSVStore] Skipped blank reviews",
			slog.String("source", name),
			slog.Int("skipped", skipped))
	}
	return reviews, nil
}

// WriteReviews writes a single column review CSV, replacing path.
func WriteReviews(path string, reviews []string) error {
	return writeAtomic(path, func(w *csv.Writer) error {
		if err := w.Write([]string{ReviewColumn}); err != nil {
			return err
		}
		for _, review := range reviews {
			if err := w.Write([]string{review}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteDetails persists a detail table, replacing path. The aspect column is
// written only in aspect mode. Rows are written in the order given.
func WriteDetails(path string, mode models.AnalysisMode, rows []models.DetailRow) error {
	err := writeAtomic(path, func(w *csv.Writer) error {
		header := generalHeader
		if mode == models.ModeAspect {
			header = aspectHeader
		}
		if err := w.Write(header); err != nil {
			return err
		}

		for _, row := range rows {
			score := strconv.FormatFloat(row.Score, 'f', -1, 64)
			record := []string{row.Review, row.Label.String(), score}
			if mode == models.ModeAspect {
				record = []string{row.Review, row.Aspect, row.Label.String(), score}
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("[CSVStore] Detail table written",
		slog.String("destination", path),
		slog.Int("rows", len(rows)))
	return nil
}

// writeAtomic writes into a temp file next to path and renames it over path,
// so readers never see a half written table.
const fileMode os.FileMode = 0o644

func writeAtomic(path string, write func(*csv.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := write(w); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	// CreateTemp opens owner-only; the final file is world-readable
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
