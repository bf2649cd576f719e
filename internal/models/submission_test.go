package models

import "testing"

func TestFormTypeValid(t *testing.T) {
	tests := []struct {
		formType FormType
		want     bool
	}{
		{FormTypeAnlageV, true},
		{FormTypeEUeR, true},
		{FormTypeUmsatzsteuer, true},
		{FormType("ANLAGE_N"), false},
		{FormType("anlage_v"), false},
		{FormType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.formType), func(t *testing.T) {
			if got := tt.formType.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v for %q", got, tt.want, tt.formType)
			}
		})
	}
}

// TestRevalidatable verifies that only pre-filing states accept a new
// validation outcome; filed and decided states are frozen
func TestRevalidatable(t *testing.T) {
	tests := []struct {
		status SubmissionStatus
		want   bool
	}{
		{StatusDraft, true},
		{StatusAIProcessed, true},
		{StatusValidated, true},
		{StatusSubmitted, false},
		{StatusAccepted, false},
		{StatusRejected, false},
		{SubmissionStatus("UNKNOWN"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Revalidatable(); got != tt.want {
				t.Errorf("Revalidatable() = %v, want %v for %q", got, tt.want, tt.status)
			}
		})
	}
}
