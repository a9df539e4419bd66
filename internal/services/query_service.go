package services

import (
	"context"
	"regexp"
	"strings"

	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
	"ucmodeler/internal/repositories"
)

var (
	commentPattern    = regexp.MustCompile(`--.*|/\*[\s\S]*?\*/`)
	stringLiteral     = regexp.MustCompile(`'(?:[^']|'')*'`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	wherePattern      = regexp.MustCompile(`\bWHERE\b`)
)

// blockedKeywords are rejected anywhere in a console statement.
var blockedKeywords = []string{
	"DROP CATALOG",
	"DROP SCHEMA",
	"DROP DATABASE",
	"TRUNCATE",
}

// rowReturning lists the statement prefixes that produce a result set.
var rowReturning = []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "VALUES", "LIST"}

// QueryService runs statements typed into the query console.
type QueryService struct {
	runner *StatementRunner
}

func NewQueryService(runner *StatementRunner) *QueryService {
	return &QueryService{runner: runner}
}

func normalizeStatement(query string) string {
	normalized := commentPattern.ReplaceAllString(query, " ")
	normalized = stringLiteral.ReplaceAllString(normalized, "''")
	normalized = whitespacePattern.ReplaceAllString(normalized, " ")

	return strings.ToUpper(strings.TrimSpace(normalized))
}

// ValidateSQLQuery rejects empty input, more than one statement, and
// statements that drop catalogs or schemas, truncate tables or delete
// without a WHERE clause.
func ValidateSQLQuery(query string) error {
	const op = "query.Validate"

	normalized := normalizeStatement(query)
	if normalized == "" {
		return errs.Newf(errs.Validation, op, "query cannot be empty")
	}

	for _, keyword := range blockedKeywords {
		if strings.Contains(normalized, keyword) {
			return errs.Newf(errs.Validation, op, "operation '%s' is not allowed", keyword)
		}
	}

	if strings.HasPrefix(normalized, "DELETE") && !wherePattern.MatchString(normalized) {
		return errs.Newf(errs.Validation, op, "DELETE statements must include a WHERE clause")
	}

	nonEmptyParts := 0
	for _, part := range strings.Split(normalized, ";") {
		if strings.TrimSpace(part) != "" {
			nonEmptyParts++
		}
	}
	if nonEmptyParts > 1 {
		return errs.Newf(errs.Validation, op, "multiple statements are not allowed")
	}

	return nil
}

func returnsRows(normalized string) bool {
	first := normalized
	if i := strings.IndexAny(first, " (;"); i >= 0 {
		first = first[:i]
	}

	for _, p := range rowReturning {
		if first == p {
			return true
		}
	}

	return false
}

// Execute validates and runs one statement. Rejected statements are recorded
// in the history without reaching the warehouse.
func (s *QueryService) Execute(ctx context.Context, wh *repositories.WarehouseRepository, state *models.SessionState, query string) (*models.QueryResult, error) {
	statement := strings.TrimSpace(query)
	statement = strings.TrimSpace(strings.TrimSuffix(statement, ";"))

	if err := ValidateSQLQuery(query); err != nil {
		state.Record(models.StatementRecord{
			Statement: statement,
			Kind:      models.KindQuery,
			Success:   false,
			Error:     err.Error(),
		})
		return nil, err
	}

	if returnsRows(normalizeStatement(statement)) {
		return s.runner.Query(ctx, wh, state, models.KindQuery, statement)
	}

	return s.runner.Exec(ctx, wh, state, models.KindQuery, statement)
}

// History returns the session's statements, newest first.
func (s *QueryService) History(state *models.SessionState) []models.StatementRecord {
	out := make([]models.StatementRecord, 0, len(state.History))
	for i := len(state.History) - 1; i >= 0; i-- {
		out = append(out, state.History[i])
	}

	return out
}
