package domain

// NormaliseReport is the outcome of the best-effort normalisation step.
// An empty OutputPath is the absent-result signal; Err says why.
type NormaliseReport struct {
	SourcePath    string
	OutputPath    string
	RowsRead      int
	RowsKept      int
	RowsDropped   int
	RowsMalformed int
	Err           error
}

// OK reports whether a processed file was produced.
func (r *NormaliseReport) OK() bool {
	return r != nil && r.Err == nil && r.OutputPath != ""
}
