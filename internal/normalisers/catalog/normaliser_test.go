package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/animerec/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const rawCatalog = `Name,Genres,sypnopsis,Score
Naruto,"Action, Adventure",A ninja story,8
Bleach,"Action, Supernatural",Soul reapers,7
,Comedy,No name here,5
Empty Genre,,Something,4
NA Synopsis,Drama,NA,3
Short,Action
`

func TestNew(t *testing.T) {
	n := New()
	require.NotNil(t, n)
	assert.IsType(t, &Normaliser{}, n)
}

func TestNormalise_DropsNullRows(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "raw.csv", rawCatalog)
	dst := filepath.Join(dir, "out", "processed.csv")

	report := New().Normalise(context.Background(), src, dst)

	require.True(t, report.OK(), "unexpected error: %v", report.Err)
	assert.Equal(t, src, report.SourcePath)
	assert.Equal(t, dst, report.OutputPath)
	assert.Equal(t, 6, report.RowsRead)
	assert.Equal(t, 2, report.RowsKept)
	assert.Equal(t, 4, report.RowsDropped)
	assert.Zero(t, report.RowsMalformed)
}

func TestNormalise_CombinedInfoFormat(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "raw.csv", rawCatalog)
	dst := filepath.Join(dir, "processed.csv")

	report := New().Normalise(context.Background(), src, dst)
	require.True(t, report.OK())

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "combined_info", lines[0])
	assert.Equal(t, `"Title: Naruto Overview: A ninja story Genres: Action, Adventure"`, lines[1])

	docs, err := New().LoadProcessed(context.Background(), dst)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Title: Naruto Overview: A ninja story Genres: Action, Adventure", docs[0].CombinedText)
	assert.Equal(t, "Title: Bleach Overview: Soul reapers Genres: Action, Supernatural", docs[1].CombinedText)
	assert.Equal(t, "row-1", docs[0].ID)
	assert.Equal(t, 2, docs[1].Row)
}

func TestNormalise_StripsBOM(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "raw.csv", "\ufeffName,Genres,sypnopsis\nMonster,Thriller,A surgeon's choice\n")
	dst := filepath.Join(dir, "processed.csv")

	report := New().Normalise(context.Background(), src, dst)

	require.True(t, report.OK(), "unexpected error: %v", report.Err)
	assert.Equal(t, 1, report.RowsKept)
}

func TestNormalise_SkipsRowsWithExtraFields(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "raw.csv", "Name,Genres,sypnopsis\nA,B,C\nX,Y,Z,extra\n")
	dst := filepath.Join(dir, "processed.csv")

	report := New().Normalise(context.Background(), src, dst)

	require.True(t, report.OK())
	assert.Equal(t, 1, report.RowsRead)
	assert.Equal(t, 1, report.RowsKept)
	assert.Equal(t, 1, report.RowsMalformed)
}

func TestNormalise_MissingFile(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "processed.csv")

	report := New().Normalise(context.Background(), filepath.Join(dir, "nope.csv"), dst)

	assert.False(t, report.OK())
	assert.Empty(t, report.OutputPath)
	var notFound *domain.DataSourceNotFoundError
	require.True(t, errors.As(report.Err, &notFound))
	assert.ErrorIs(t, report.Err, domain.ErrDataLoad)
	assert.ErrorIs(t, report.Err, domain.ErrPipeline)
	assert.ErrorIs(t, report.Err, domain.ErrNotFound)
	assert.NoFileExists(t, dst)
}

func TestNormalise_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "raw.csv", "")

	report := New().Normalise(context.Background(), src, filepath.Join(dir, "processed.csv"))

	assert.False(t, report.OK())
	var empty *domain.EmptyDataError
	require.True(t, errors.As(report.Err, &empty))
	assert.ErrorIs(t, report.Err, domain.ErrDataLoad)
}

func TestNormalise_MissingColumns(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "raw.csv", "Name,synopsis\nA,B\n")

	report := New().Normalise(context.Background(), src, filepath.Join(dir, "processed.csv"))

	assert.False(t, report.OK())
	var missing *domain.MissingColumnsError
	require.True(t, errors.As(report.Err, &missing))
	assert.Equal(t, []string{"Genres", "sypnopsis"}, missing.Missing)
	assert.ErrorIs(t, report.Err, domain.ErrDataLoad)
}

func TestNormalise_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "raw.csv", rawCatalog)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := New().Normalise(ctx, src, filepath.Join(dir, "processed.csv"))

	assert.False(t, report.OK())
	var loadErr *domain.DataLoadError
	require.True(t, errors.As(report.Err, &loadErr))
	assert.ErrorIs(t, report.Err, context.Canceled)
}

func TestLoadProcessed_FallsBackToFirstColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "processed.csv", "text\nfirst\n\nsecond\n")

	docs, err := New().LoadProcessed(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "first", docs[0].CombinedText)
	assert.Equal(t, "second", docs[1].CombinedText)
}

func TestLoadProcessed_FoldsWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "processed.csv",
		"combined_info\n\"Title: Monster  Overview: A surgeon's\r\nchoice Genres: Thriller\"\n\"  \t \"\n")

	docs, err := New().LoadProcessed(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Title: Monster Overview: A surgeon's choice Genres: Thriller", docs[0].CombinedText)
}

func TestLoadProcessed_MissingFile(t *testing.T) {
	_, err := New().LoadProcessed(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, domain.ErrDataLoad)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIsNull(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"NA", true},
		{"NaN", true},
		{"null", true},
		{"None", true},
		{"Naruto", false},
		{" ", false},
		{"0", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, isNull(tt.value))
		})
	}
}
