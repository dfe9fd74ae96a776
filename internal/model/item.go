package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "Pendiente"
	StatusInProgress Status = "En proceso"
	StatusDone       Status = "Listo"
)

// Statuses returns every task status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusDone}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Next returns the status that follows s in the lifecycle, wrapping from
// done back to pending.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusDone
	default:
		return StatusPending
	}
}

var statusAliases = map[string]Status{
	"pendiente":   StatusPending,
	"pending":     StatusPending,
	"todo":        StatusPending,
	"en proceso":  StatusInProgress,
	"in-progress": StatusInProgress,
	"in_progress": StatusInProgress,
	"doing":       StatusInProgress,
	"listo":       StatusDone,
	"done":        StatusDone,
}

// ParseStatus resolves a canonical status or one of its CLI aliases.
func ParseStatus(s string) (Status, bool) {
	st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

type ModificationType string

const (
	ModificationContent ModificationType = "content"
	ModificationStatus  ModificationType = "status"
)

func (t ModificationType) IsValid() bool {
	return t == ModificationContent || t == ModificationStatus
}

// MaxContentLength is the longest task content, in characters, that
// callers accept from users.
const MaxContentLength = 150

type Task struct {
	ID            string
	Content       string
	CreatedAt     time.Time
	Status        Status
	Modifications []Modification // newest first
}

// Modification records one field change on a task. TaskID is a lookup key
// only; the owning task is whichever task holds it.
type Modification struct {
	ID        string
	TaskID    string
	Timestamp time.Time
	Type      ModificationType
	From      string
	To        string
}

// ID prefixes
const (
	PrefixProject      = "project"
	PrefixTask         = "task"
	PrefixModification = "mod"
	PrefixActivity     = "act"
)

// GenerateID returns prefix-<12 hex chars>.
func GenerateID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + raw[:12]
}
