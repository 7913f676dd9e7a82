package model

import (
	"fmt"
	"time"
)

// Acta represents the minutes of a community meeting
type Acta struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Date             string    `json:"date"` // YYYY-MM-DD
	ExecutiveSummary string    `json:"executive_summary"`
	Topics           []string  `json:"topics,omitempty"`
	Agreements       []string  `json:"agreements"`
	Tasks            []Task    `json:"tasks,omitempty"`
	Transcript       string    `json:"transcript"`
	CreatedBy        string    `json:"created_by"`
	Community        string    `json:"community"`
	Status           string    `json:"status"`              // draft, published
	Signature        string    `json:"signature,omitempty"` // base64 PNG
	SignedBy         string    `json:"signed_by,omitempty"`
	SignedAt         string    `json:"signed_at,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Task is an action item extracted from the meeting
type Task struct {
	Responsible string `json:"responsible"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
}

// Acta status constants
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Sign returns a published copy of the acta with the signature stamped on it.
// The input acta is never mutated; callers may still hold references to the
// unsigned draft.
func Sign(acta Acta, signatureImage, signedBy string, now time.Time) Acta {
	signed := acta
	signed.Agreements = append([]string(nil), acta.Agreements...)
	signed.Topics = append([]string(nil), acta.Topics...)
	signed.Tasks = append([]Task(nil), acta.Tasks...)
	signed.Status = StatusPublished
	signed.Signature = signatureImage
	signed.SignedBy = signedBy
	signed.SignedAt = now.Format(time.RFC3339)
	signed.UpdatedAt = now
	return signed
}

// Validate checks the structural invariants of an acta: a non-empty title and
// signature fields that are all present exactly when the acta is published.
func (a *Acta) Validate() error {
	if a.Title == "" {
		return fmt.Errorf("acta title must not be empty")
	}

	signed := a.Signature != "" && a.SignedBy != "" && a.SignedAt != ""
	unsigned := a.Signature == "" && a.SignedBy == "" && a.SignedAt == ""

	switch a.Status {
	case StatusPublished:
		if !signed {
			return fmt.Errorf("published acta must carry signature, signed_by and signed_at")
		}
	case StatusDraft:
		if !unsigned {
			return fmt.Errorf("draft acta must not carry signature fields")
		}
	default:
		return fmt.Errorf("unknown acta status: %s", a.Status)
	}

	return nil
}
