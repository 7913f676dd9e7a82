package model

import (
	"testing"
	"time"
)

func draftActa() Acta {
	return Acta{
		ID:               "a-1",
		Title:            "Junta Ordinaria - Enero 2024",
		Date:             "2024-01-15",
		ExecutiveSummary: "Resumen de la junta.",
		Agreements:       []string{"Aprobacion de presupuestos 2024"},
		Transcript:       "El presidente abre la sesion.",
		CreatedBy:        "Carlos Garcia",
		Community:        "c-1",
		Status:           StatusDraft,
		CreatedAt:        time.Now(),
	}
}

func TestSignProducesPublishedCopy(t *testing.T) {
	draft := draftActa()
	now := time.Date(2024, 3, 1, 19, 30, 0, 0, time.UTC)

	signed := Sign(draft, "ZmlybWE=", "Carlos Garcia", now)

	if signed.Status != StatusPublished {
		t.Errorf("Expected status %s, got %s", StatusPublished, signed.Status)
	}
	if signed.Signature != "ZmlybWE=" {
		t.Errorf("Expected signature to be set, got '%s'", signed.Signature)
	}
	if signed.SignedBy != "Carlos Garcia" {
		t.Errorf("Expected signed_by 'Carlos Garcia', got '%s'", signed.SignedBy)
	}
	if signed.SignedAt != now.Format(time.RFC3339) {
		t.Errorf("Expected signed_at %s, got %s", now.Format(time.RFC3339), signed.SignedAt)
	}
	if err := signed.Validate(); err != nil {
		t.Errorf("Expected signed acta to validate, got %v", err)
	}
}

func TestSignDoesNotMutateInput(t *testing.T) {
	draft := draftActa()

	signed := Sign(draft, "ZmlybWE=", "Carlos Garcia", time.Now())

	if draft.Status != StatusDraft {
		t.Errorf("Expected draft status unchanged, got %s", draft.Status)
	}
	if draft.Signature != "" || draft.SignedBy != "" || draft.SignedAt != "" {
		t.Error("Expected draft signature fields to stay empty")
	}

	// The signed copy must not share agreement backing storage with the draft
	signed.Agreements[0] = "modified"
	if draft.Agreements[0] == "modified" {
		t.Error("Expected agreements slice to be copied, not shared")
	}
}

func TestValidateSignatureInvariant(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *Acta)
		wantErr bool
	}{
		{
			name:    "valid draft",
			mutate:  func(a *Acta) {},
			wantErr: false,
		},
		{
			name: "draft with stray signature",
			mutate: func(a *Acta) {
				a.Signature = "ZmlybWE="
			},
			wantErr: true,
		},
		{
			name: "published without signature",
			mutate: func(a *Acta) {
				a.Status = StatusPublished
			},
			wantErr: true,
		},
		{
			name: "published with partial signature fields",
			mutate: func(a *Acta) {
				a.Status = StatusPublished
				a.Signature = "ZmlybWE="
				a.SignedBy = "Carlos Garcia"
			},
			wantErr: true,
		},
		{
			name: "empty title",
			mutate: func(a *Acta) {
				a.Title = ""
			},
			wantErr: true,
		},
		{
			name: "unknown status",
			mutate: func(a *Acta) {
				a.Status = "archived"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acta := draftActa()
			tt.mutate(&acta)

			err := acta.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}
