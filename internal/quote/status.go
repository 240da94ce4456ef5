package quote

import (
	"net/http"
	"strings"

	"github.com/aryanbrs/packklite-sub001/internal/common"
)

// Status is the lifecycle state of a quote request.
type Status string

const (
	StatusNew      Status = "NEW"
	StatusInReview Status = "IN_REVIEW"
	StatusQuoted   Status = "QUOTED"
	StatusClosed   Status = "CLOSED"
	StatusRejected Status = "REJECTED"
)

var transitions = map[Status][]Status{
	StatusNew:      {StatusInReview, StatusRejected, StatusClosed},
	StatusInReview: {StatusQuoted, StatusRejected, StatusClosed},
	StatusQuoted:   {StatusClosed},
}

// ErrInvalidTransition is returned when a status change is not in the table.
var ErrInvalidTransition = common.NewAppError("INVALID_TRANSITION", "status transition not allowed", http.StatusConflict, nil)

// ParseStatus accepts any casing of a known status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusNew, StatusInReview, StatusQuoted, StatusClosed, StatusRejected:
		return st, true
	}
	return "", false
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}
