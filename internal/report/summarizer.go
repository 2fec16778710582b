package report

// Summarizer computes summaries over one fixed dataset.
type Summarizer struct {
	ds *Dataset
}

// NewSummarizer binds a Summarizer to ds.
func NewSummarizer(ds *Dataset) *Summarizer {
	return &Summarizer{ds: ds}
}

// Summarize filters the bound dataset by spec and computes every table.
func (s *Summarizer) Summarize(spec FilterSpec) Summary {
	return Summarize(s.ds, spec)
}
