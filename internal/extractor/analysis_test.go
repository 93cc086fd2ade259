package extractor

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"voice-leads-go/internal/types"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int { return &n }

func withBlob(key string, value any) types.CanonicalPayload {
	return types.CanonicalPayload{
		"analysis": map[string]any{
			"data_collection_results": map[string]any{
				key: map[string]any{"data_collection_id": key, "value": value},
			},
		},
	}
}

const fullBlob = `{'intent_level': 'High', 'intent_score': 3, 'urgency_level': 'Medium', 'urgency_score': 2,
 'budget_constraint': 'Flexible', 'budget_score': 2, 'fit_alignment': 'Strong', 'fit_score': 3,
 'engagement_health': 'Healthy', 'engagement_score': 3, 'total_score': 87, 'lead_status_tag': 'Hot Lead',
 'reasoning': 'Customer shows high interest', 'cta_pricing_clicked': 'Yes', 'cta_demo_booked': 'No',
 'cta_followup_requested': 'yes', 'cta_sample_requested': 'NO', 'cta_escalated_to_human': 'No',}`

func TestDecodeAnalysisAbsent(t *testing.T) {
	cases := map[string]types.CanonicalPayload{
		"no analysis":        {},
		"no data collection": {"analysis": map[string]any{"call_successful": "success"}},
		"blank value":        withBlob("default", "   "),
		"no value field":     {"analysis": map[string]any{"data_collection_results": map[string]any{"default": map[string]any{}}}},
	}
	for name, p := range cases {
		got, err := DecodeAnalysis(p)
		if err != nil || got != nil {
			t.Errorf("%s: expected nil, nil; got %v, %v", name, got, err)
		}
	}
}

func TestDecodeAnalysisFullBlob(t *testing.T) {
	p := withBlob("default", fullBlob)
	p["analysis"].(map[string]any)["call_successful"] = "success"
	p["analysis"].(map[string]any)["transcript_summary"] = "Discussed pricing tiers."
	p["analysis"].(map[string]any)["call_summary_title"] = "Pricing inquiry"

	got, err := DecodeAnalysis(p)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := &types.ParsedAnalysis{
		IntentLevel:      strPtr("High"),
		IntentScore:      intPtr(3),
		UrgencyLevel:     strPtr("Medium"),
		UrgencyScore:     intPtr(2),
		BudgetConstraint: strPtr("Flexible"),
		BudgetScore:      intPtr(2),
		FitAlignment:     strPtr("Strong"),
		FitScore:         intPtr(3),
		EngagementHealth: strPtr("Healthy"),
		EngagementScore:  intPtr(3),
		TotalScore:       intPtr(87),
		LeadStatusTag:    strPtr("Hot Lead"),
		Reasoning:        "Customer shows high interest",
		CTAInteractions: types.CTAInteractions{
			PricingClicked:    true,
			FollowupRequested: true,
		},
		CallSuccessful:    "success",
		TranscriptSummary: "Discussed pricing tiers.",
		CallSummaryTitle:  "Pricing inquiry",
		AnalysisSource:    AnalysisSource,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestDecodeAnalysisMixedQuotes(t *testing.T) {
	blob := `{"intent_level": 'High', 'urgency_level': None, "reasoning": 'Asked: "what's the price?" -- twice; None, really.',
		'lead_status_tag': "Warm Lead (follow-up)", "intent_score": 2, 'total_score': 55}`
	got, err := DecodeAnalysis(withBlob("default", blob))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.UrgencyLevel != nil {
		t.Fatalf("expected nil urgency level, got %q", *got.UrgencyLevel)
	}
	if *got.IntentLevel != "High" {
		t.Errorf("intent level: %q", *got.IntentLevel)
	}
	if got.Reasoning != `Asked: "what's the price?" -- twice; None, really.` {
		t.Errorf("reasoning altered: %q", got.Reasoning)
	}
	if *got.LeadStatusTag != "Warm Lead (follow-up)" {
		t.Errorf("lead status altered: %q", *got.LeadStatusTag)
	}
}

func TestDecodeAnalysisKeyPriority(t *testing.T) {
	results := map[string]any{
		"Basic CTA": map[string]any{"value": `{'lead_status_tag': 'from basic'}`},
		"Aardvark":  map[string]any{"value": `{'lead_status_tag': 'from other'}`},
	}
	p := types.CanonicalPayload{"analysis": map[string]any{"data_collection_results": results}}

	got, err := DecodeAnalysis(p)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if *got.LeadStatusTag != "from basic" {
		t.Fatalf("expected Basic CTA to win over other keys, got %q", *got.LeadStatusTag)
	}

	results["default"] = map[string]any{"value": `{'lead_status_tag': 'from default'}`}
	got, _ = DecodeAnalysis(p)
	if *got.LeadStatusTag != "from default" {
		t.Fatalf("expected default to win, got %q", *got.LeadStatusTag)
	}

	delete(results, "default")
	delete(results, "Basic CTA")
	got, _ = DecodeAnalysis(p)
	if *got.LeadStatusTag != "from other" {
		t.Fatalf("expected fallback key, got %q", *got.LeadStatusTag)
	}
}

func TestDecodeAnalysisStructuredValue(t *testing.T) {
	got, err := DecodeAnalysis(withBlob("default", map[string]any{"total_score": float64(40), "cta_demo_booked": "Yes"}))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if *got.TotalScore != 40 || !got.CTAInteractions.DemoBooked {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestDecodeAnalysisInvalidText(t *testing.T) {
	_, err := DecodeAnalysis(withBlob("default", "invalid json"))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.Snippet != "invalid json" || de.Key != "default" {
		t.Fatalf("diagnostics missing: %+v", de)
	}
}

func TestDecodeAnalysisScoreTypes(t *testing.T) {
	got, err := DecodeAnalysis(withBlob("default", `{'intent_score': '2', 'urgency_score': 3.0, 'total_score': "70"}`))
	if err != nil {
		t.Fatalf("numeric strings should decode: %v", err)
	}
	if *got.IntentScore != 2 || *got.UrgencyScore != 3 || *got.TotalScore != 70 {
		t.Fatalf("unexpected scores %+v", got)
	}

	for _, blob := range []string{
		`{'intent_score': 'high'}`,
		`{'intent_score': 2.5}`,
		`{'intent_score': True}`,
		`{'lead_status_tag': 5}`,
		`['not', 'an', 'object']`,
		`{'a': 1} {'b': 2}`,
	} {
		if _, err := DecodeAnalysis(withBlob("default", blob)); err == nil {
			t.Errorf("%s: expected decode error", blob)
		}
	}
}

func TestDecodeAnalysisCTAFlags(t *testing.T) {
	cases := map[string]bool{"Yes": true, "YES": true, "yes": true, "No": false, "y": false, " yes": false, "": false}
	for in, want := range cases {
		blob := fmt.Sprintf(`{'cta_sample_requested': '%s'}`, in)
		got, err := DecodeAnalysis(withBlob("default", blob))
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got.CTAInteractions.SampleRequested != want {
			t.Errorf("%q: got %v want %v", in, got.CTAInteractions.SampleRequested, want)
		}
	}
}

// toDictLiteral renders a record the way the provider does: single quotes,
// bare None, Yes/No flags and a trailing comma.
func toDictLiteral(a *types.ParsedAnalysis) string {
	str := func(p *string) string {
		if p == nil {
			return "None"
		}
		return "'" + strings.ReplaceAll(*p, "'", `\'`) + "'"
	}
	num := func(p *int) string {
		if p == nil {
			return "None"
		}
		return fmt.Sprint(*p)
	}
	yn := func(b bool) string {
		if b {
			return "'Yes'"
		}
		return "'No'"
	}
	parts := []string{
		"'intent_level': " + str(a.IntentLevel),
		"'intent_score': " + num(a.IntentScore),
		"'urgency_level': " + str(a.UrgencyLevel),
		"'urgency_score': " + num(a.UrgencyScore),
		"'budget_constraint': " + str(a.BudgetConstraint),
		"'budget_score': " + num(a.BudgetScore),
		"'fit_alignment': " + str(a.FitAlignment),
		"'fit_score': " + num(a.FitScore),
		"'engagement_health': " + str(a.EngagementHealth),
		"'engagement_score': " + num(a.EngagementScore),
		"'total_score': " + num(a.TotalScore),
		"'lead_status_tag': " + str(a.LeadStatusTag),
		"'reasoning': " + str(&a.Reasoning),
		"'cta_pricing_clicked': " + yn(a.CTAInteractions.PricingClicked),
		"'cta_demo_booked': " + yn(a.CTAInteractions.DemoBooked),
		"'cta_followup_requested': " + yn(a.CTAInteractions.FollowupRequested),
		"'cta_sample_requested': " + yn(a.CTAInteractions.SampleRequested),
		"'cta_escalated_to_human': " + yn(a.CTAInteractions.EscalatedToHuman),
	}
	return "{" + strings.Join(parts, ", ") + ",}"
}

func TestDecodeAnalysisRoundTrip(t *testing.T) {
	records := []*types.ParsedAnalysis{
		{
			IntentLevel: strPtr("Low"), IntentScore: intPtr(1),
			UrgencyLevel: strPtr("None yet"), UrgencyScore: intPtr(1),
			TotalScore: intPtr(0), LeadStatusTag: strPtr("Cold Lead"),
			Reasoning: "Wasn't interested, said \"no thanks\".",
		},
		{
			IntentLevel: strPtr("High"), IntentScore: intPtr(3),
			UrgencyLevel: strPtr("High"), UrgencyScore: intPtr(3),
			BudgetConstraint: strPtr("None"), BudgetScore: intPtr(3),
			FitAlignment: strPtr("Strong, {clear} [fit]"), FitScore: intPtr(2),
			EngagementHealth: strPtr("True believer"), EngagementScore: intPtr(3),
			TotalScore: intPtr(100), LeadStatusTag: strPtr("Hot Lead"),
			CTAInteractions: types.CTAInteractions{PricingClicked: true, DemoBooked: true, EscalatedToHuman: true},
		},
	}
	for i, want := range records {
		want.AnalysisSource = AnalysisSource
		got, err := DecodeAnalysis(withBlob("default", toDictLiteral(want)))
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("record %d mismatch:\n got %+v\nwant %+v", i, got, want)
		}
	}
}
