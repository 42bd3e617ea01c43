package domain

import "strings"

// Catalog column names as they appear in the upstream CSV.
// "sypnopsis" is misspelled upstream and must be matched verbatim.
const (
	ColumnName     = "Name"
	ColumnGenres   = "Genres"
	ColumnSynopsis = "sypnopsis"

	// ColumnCombinedInfo is the single column of the processed catalog.
	ColumnCombinedInfo = "combined_info"
)

// RequiredCatalogColumns returns the columns every catalog file must provide.
func RequiredCatalogColumns() []string {
	return []string{ColumnName, ColumnGenres, ColumnSynopsis}
}

// CatalogRecord is one row of the raw anime catalog.
type CatalogRecord struct {
	// Name is the anime title.
	Name string

	// Genres is the comma separated genre list, kept as text.
	Genres string

	// Synopsis is read from the upstream "sypnopsis" column.
	Synopsis string
}

// CombinedText renders the record into the fixed template used for embedding.
func (r CatalogRecord) CombinedText() string {
	var b strings.Builder
	b.Grow(len(r.Name) + len(r.Synopsis) + len(r.Genres) + 27)
	b.WriteString("Title: ")
	b.WriteString(r.Name)
	b.WriteString(" Overview: ")
	b.WriteString(r.Synopsis)
	b.WriteString(" Genres: ")
	b.WriteString(r.Genres)
	return b.String()
}

// NormalizedDocument is the single combined-text representation of a
// catalog record. It is created once per build and never mutated.
type NormalizedDocument struct {
	// ID identifies the document within a build (e.g. "row-12").
	ID string

	// Row is the 1-based data row in the processed catalog.
	Row int

	// CombinedText is the text that gets chunked and embedded.
	CombinedText string
}

// Chunk represents an embedding unit within a document.
// Documents are split into chunks before embedding.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links back to the source NormalizedDocument.
	// It is kept for traceability only.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}
