package extractor

import (
	"errors"
	"strings"
	"testing"

	"voice-leads-go/internal/types"
)

func validRecord() *types.ParsedAnalysis {
	return &types.ParsedAnalysis{
		IntentLevel:   strPtr("High"),
		IntentScore:   intPtr(3),
		UrgencyLevel:  strPtr("Low"),
		UrgencyScore:  intPtr(1),
		TotalScore:    intPtr(0),
		LeadStatusTag: strPtr("Cold Lead"),
	}
}

func TestValidateAnalysisAccepts(t *testing.T) {
	a := validRecord()
	if err := ValidateAnalysis(a); err != nil {
		t.Fatalf("expected valid record, got %v", err)
	}
	a.BudgetScore, a.FitScore, a.EngagementScore, a.TotalScore = intPtr(1), intPtr(2), intPtr(3), intPtr(100)
	if err := ValidateAnalysis(a); err != nil {
		t.Fatalf("expected valid record, got %v", err)
	}
}

func TestValidateAnalysisCollectsAllViolations(t *testing.T) {
	a := validRecord()
	a.IntentScore = intPtr(4)
	a.UrgencyScore = intPtr(0)
	a.BudgetScore = intPtr(0)
	a.FitScore = intPtr(9)
	a.EngagementScore = intPtr(-1)
	a.TotalScore = intPtr(101)

	err := ValidateAnalysis(a)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Violations) != 6 {
		t.Fatalf("expected 6 violations, got %v", ve.Violations)
	}
	if !strings.Contains(err.Error(), "totalScore must be between 0 and 100, got 101") {
		t.Fatalf("unexpected message: %v", err)
	}
	if !strings.Contains(err.Error(), "intentScore must be between 1 and 3, got 4") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestValidateAnalysisRequiredFields(t *testing.T) {
	err := ValidateAnalysis(&types.ParsedAnalysis{})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"intentLevel", "intentScore", "urgencyLevel", "urgencyScore", "totalScore", "leadStatusTag"} {
		if !strings.Contains(err.Error(), field+" is required") {
			t.Errorf("missing violation for %s in %v", field, err)
		}
	}
	if len(ve.Violations) != 6 {
		t.Fatalf("expected 6 violations, got %v", ve.Violations)
	}
}

func TestValidateAnalysisNil(t *testing.T) {
	if err := ValidateAnalysis(nil); err == nil {
		t.Fatal("expected error for nil record")
	}
}
