package models

import (
	"time"

	"github.com/google/uuid"
)

// Statement kinds recorded in the history.
const (
	KindCreateTable = "create_table"
	KindDropTable   = "drop_table"
	KindPrimaryKey  = "primary_key"
	KindForeignKey  = "foreign_key"
	KindQuery       = "query"
	KindProbe       = "probe"
)

type StatementRecord struct {
	ID         uuid.UUID `json:"id"`
	Statement  string    `json:"statement"`
	Kind       string    `json:"kind"`
	ExecutedAt time.Time `json:"executed_at"`
	Success    bool      `json:"success"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

func (r *StatementRecord) Prepare() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.ExecutedAt.IsZero() {
		r.ExecutedAt = time.Now()
	}
}
