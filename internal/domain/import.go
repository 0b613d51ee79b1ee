package domain

import "fmt"

// ImportKind selects the importer for a CSV upload.
type ImportKind string

const (
	ImportKindContribution ImportKind = "contribution"
	ImportKindLoan         ImportKind = "loan"
	ImportKindMortgage     ImportKind = "mortgage"
	ImportKindProperty     ImportKind = "property"
	ImportKindRefund       ImportKind = "refund"
)

// ImportColumns lists the positional columns each importer expects.
var ImportColumns = map[ImportKind][]string{
	ImportKindContribution: {"Member ID", "Amount", "Type", "Payment Method", "Payment Date", "Notes"},
	ImportKindLoan:         {"Member ID", "Amount", "Interest Rate", "Tenure Months", "Purpose"},
	ImportKindMortgage:     {"Member ID", "Provider", "Amount", "Interest Rate", "Tenure Years", "Property ID"},
	ImportKindProperty:     {"Name", "Type", "Location", "Price", "Size"},
	ImportKindRefund:       {"Member ID", "Source", "Amount", "Reason", "Notes"},
}

// IsValid reports whether k has an importer.
func (k ImportKind) IsValid() bool {
	_, ok := ImportColumns[k]
	return ok
}

// MaxImportErrors bounds the number of row errors returned to the caller.
const MaxImportErrors = 50

// ImportRowError describes why a single CSV line was rejected. Line is
// 1-indexed and counts the header line.
type ImportRowError struct {
	Line    int
	Message string
}

func (e ImportRowError) String() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	BatchID    string
	Kind       ImportKind
	Errors     []ImportRowError
	Total      int
	Successful int
	Failed     int
}

// RecordSuccess counts a row that was persisted.
func (r *ImportResult) RecordSuccess() {
	r.Successful++
}

// RecordFailure counts a rejected row. Only the first MaxImportErrors messages
// are kept.
func (r *ImportResult) RecordFailure(line int, message string) {
	r.Failed++
	if len(r.Errors) < MaxImportErrors {
		r.Errors = append(r.Errors, ImportRowError{Line: line, Message: message})
	}
}

// Abort discards per-row outcomes after the whole batch was rolled back.
func (r *ImportResult) Abort(message string) {
	r.Successful = 0
	r.Failed = r.Total
	r.Errors = []ImportRowError{{Line: 0, Message: message}}
}
