package models

import (
	"time"

	"github.com/google/uuid"

	"ucmodeler/internal/config"
)

// MaxHistory bounds the statement history kept per session.
const MaxHistory = 50

// SessionState is everything the application remembers about one browser
// session. Repositories hand out copies; callers save them back.
type SessionState struct {
	ID         uuid.UUID                `json:"id"`
	Connection *config.ConnectionConfig `json:"connection,omitempty"`
	Catalog    string                   `json:"catalog,omitempty"`
	Schema     string                   `json:"schema,omitempty"`
	Design     DesignModel              `json:"design"`
	History    []StatementRecord        `json:"history,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
	LastSeen   time.Time                `json:"last_seen"`
}

func (s *SessionState) Prepare() {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.LastSeen = now
}

func (s *SessionState) Connected() bool {
	return s.Connection != nil
}

// Record appends rec to the history, dropping the oldest entries beyond
// MaxHistory.
func (s *SessionState) Record(rec StatementRecord) {
	rec.Prepare()
	s.History = append(s.History, rec)
	if n := len(s.History); n > MaxHistory {
		s.History = append([]StatementRecord(nil), s.History[n-MaxHistory:]...)
	}
}

// Clone returns a deep copy so stored state cannot be mutated through it.
func (s *SessionState) Clone() *SessionState {
	c := *s
	if s.Connection != nil {
		conn := *s.Connection
		c.Connection = &conn
	}
	c.History = append([]StatementRecord(nil), s.History...)
	c.Design = s.Design.Clone()

	return &c
}

// SessionSummary is the token-free view of a session returned to the page.
type SessionSummary struct {
	ID        uuid.UUID `json:"id"`
	Connected bool      `json:"connected"`
	Host      string    `json:"host,omitempty"`
	HTTPPath  string    `json:"http_path,omitempty"`
	Token     string    `json:"token,omitempty"`
	Catalog   string    `json:"catalog,omitempty"`
	Schema    string    `json:"schema,omitempty"`
	Tables    int       `json:"design_tables"`
}

func (s *SessionState) Summary() SessionSummary {
	sum := SessionSummary{
		ID:        s.ID,
		Connected: s.Connected(),
		Catalog:   s.Catalog,
		Schema:    s.Schema,
		Tables:    len(s.Design.Tables),
	}
	if s.Connection != nil {
		sum.Host = s.Connection.Host
		sum.HTTPPath = s.Connection.HTTPPath
		sum.Token = s.Connection.MaskedToken()
	}

	return sum
}
