// Package catalog normalises the raw anime catalog CSV into the processed
// single-column catalog consumed by the index builder.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
	"github.com/custodia-labs/animerec/internal/logger"
	"github.com/custodia-labs/animerec/internal/postprocessors/whitespace"
)

// Ensure Normaliser implements the interface.
var _ driven.CatalogNormaliser = (*Normaliser)(nil)

const bom = "\ufeff"

// nullTokens are the field values treated as missing, in addition to the
// empty string. They mirror the default NA markers of common dataframe readers.
var nullTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {},
	"n/a": {}, "nan": {}, "null": {},
}

func isNull(v string) bool {
	if v == "" {
		return true
	}
	_, ok := nullTokens[v]
	return ok
}

// Normaliser reads and writes catalog files.
type Normaliser struct{}

// New creates a new catalog normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise converts the raw catalog at src into the processed catalog at dst.
// Rows with a missing Name, Genres or synopsis are dropped and counted.
func (n *Normaliser) Normalise(ctx context.Context, src, dst string) *domain.NormaliseReport {
	report := &domain.NormaliseReport{SourcePath: src}

	records, err := n.readRaw(ctx, src, report)
	if err != nil {
		report.Err = err
		logger.L().Warn().Err(err).Str("path", src).Msg("catalog normalisation failed")
		return report
	}

	if report.RowsDropped > 0 {
		logger.L().Warn().
			Int("rows_dropped", report.RowsDropped).
			Str("path", src).
			Msg("dropped catalog rows with missing fields")
	}
	if report.RowsMalformed > 0 {
		logger.L().Warn().
			Int("rows_malformed", report.RowsMalformed).
			Str("path", src).
			Msg("skipped unparseable catalog rows")
	}

	if err := writeProcessed(dst, records); err != nil {
		report.Err = &domain.DataLoadError{Path: dst, Err: err}
		logger.L().Warn().Err(err).Str("path", dst).Msg("writing processed catalog failed")
		return report
	}

	report.RowsKept = len(records)
	report.OutputPath = dst
	logger.Debug("normalised %d of %d catalog rows into %s", report.RowsKept, report.RowsRead, dst)
	return report
}

// readRaw parses the raw catalog and returns the valid records.
func (n *Normaliser) readRaw(ctx context.Context, src string, report *domain.NormaliseReport) ([]domain.CatalogRecord, error) {
	f, err := openCatalog(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := newReader(f)
	header, err := readHeader(r, src)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		if _, seen := index[col]; !seen {
			index[col] = i
		}
	}

	var missing []string
	for _, col := range domain.RequiredCatalogColumns() {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &domain.MissingColumnsError{Path: src, Missing: missing}
	}

	field := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []domain.CatalogRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, &domain.DataLoadError{Path: src, Err: err}
		}

		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				report.RowsMalformed++
				continue
			}
			return nil, &domain.DataLoadError{Path: src, Err: err}
		}
		if len(row) > len(header) {
			report.RowsMalformed++
			continue
		}

		report.RowsRead++
		rec := domain.CatalogRecord{
			Name:     field(row, domain.ColumnName),
			Genres:   field(row, domain.ColumnGenres),
			Synopsis: field(row, domain.ColumnSynopsis),
		}
		if isNull(rec.Name) || isNull(rec.Genres) || isNull(rec.Synopsis) {
			report.RowsDropped++
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// LoadProcessed reads the processed catalog. The combined_info column is used
// when present, otherwise the first column. Whitespace in each document is
// folded. Empty rows are skipped.
func (n *Normaliser) LoadProcessed(ctx context.Context, path string) ([]domain.NormalizedDocument, error) {
	f, err := openCatalog(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := newReader(f)
	header, err := readHeader(r, path)
	if err != nil {
		return nil, err
	}

	col := 0
	for i, name := range header {
		if name == domain.ColumnCombinedInfo {
			col = i
			break
		}
	}

	var docs []domain.NormalizedDocument
	row := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, &domain.DataLoadError{Path: path, Err: err}
		}

		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			return nil, &domain.DataLoadError{Path: path, Err: err}
		}

		row++
		if col >= len(rec) || isNull(rec[col]) {
			continue
		}
		text := whitespace.Fold(rec[col])
		if text == "" {
			continue
		}
		docs = append(docs, domain.NormalizedDocument{
			ID:           fmt.Sprintf("row-%d", row),
			Row:          row,
			CombinedText: text,
		})
	}

	return docs, nil
}

func openCatalog(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &domain.DataSourceNotFoundError{Path: path, Err: err}
	}
	return nil, &domain.DataLoadError{Path: path, Err: err}
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func readHeader(r *csv.Reader, path string) ([]string, error) {
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.EmptyDataError{Path: path}
	}
	if err != nil {
		return nil, &domain.DataLoadError{Path: path, Err: fmt.Errorf("reading header: %w", err)}
	}
	header[0] = strings.TrimPrefix(header[0], bom)
	return header, nil
}

// writeProcessed writes the combined_info catalog through a temporary file
// in the destination directory, then renames it into place.
func writeProcessed(dst string, records []domain.CatalogRecord) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{domain.ColumnCombinedInfo}); err != nil {
		tmp.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write([]string{rec.CombinedText()}); err != nil {
			tmp.Close()
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing csv: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
