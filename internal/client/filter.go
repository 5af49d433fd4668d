package client

import (
	"strings"

	"github.com/Bu1gur/challenger-crm/internal/membership"
)

// Filter narrows the client list the way the front desk searches it.
type Filter struct {
	Search      string
	Trainer     string
	Group       string
	Status      membership.Status
	ShowDeleted bool
}

func (f Filter) IsZero() bool {
	return f.Search == "" && f.Trainer == "" && f.Group == "" && f.Status == "" && !f.ShowDeleted
}

// Match reports whether c passes every non-empty criterion. Search is a
// case-insensitive substring of "name surname phone".
func (f Filter) Match(c membership.Client) bool {
	if c.Deleted && !f.ShowDeleted {
		return false
	}
	if f.Trainer != "" && c.Trainer != f.Trainer {
		return false
	}
	if f.Group != "" && c.Group != f.Group {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		haystack := strings.ToLower(c.Name + " " + c.Surname + " " + c.Phone)
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}
