package models

// QueryResult is the tabular outcome of one statement.
type QueryResult struct {
	Columns       []string         `json:"columns"`
	Rows          []map[string]any `json:"rows"`
	RowCount      int              `json:"row_count"`
	RowsAffected  int64            `json:"rows_affected,omitempty"`
	ExecutionTime int64            `json:"execution_time_ms"`
}

// String returns the named column of row i as a string, or "" when absent.
func (r *QueryResult) String(i int, column string) string {
	if i < 0 || i >= len(r.Rows) {
		return ""
	}

	v, ok := r.Rows[i][column]
	if !ok || v == nil {
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}

	return ""
}

type ExecuteQueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// StatementOutcome reports one statement of a multi-statement run.
type StatementOutcome struct {
	Statement string `json:"statement"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// ApplyReport summarizes a run where each statement is its own round trip
// and earlier statements stay applied when a later one fails.
type ApplyReport struct {
	Statements []StatementOutcome `json:"statements"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
}
