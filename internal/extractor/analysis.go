package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"voice-leads-go/internal/dictlit"
	"voice-leads-go/internal/payload"
	"voice-leads-go/internal/types"
)

// AnalysisSource tags every decoded record with where the scores came from.
const AnalysisSource = "elevenlabs_data_collection"

// blobKeyPriority lists the data collection entries tried first; any other
// entry is tried afterwards in name order.
var blobKeyPriority = []string{"default", "Basic CTA"}

const (
	fieldIntentLevel      = "intent_level"
	fieldIntentScore      = "intent_score"
	fieldUrgencyLevel     = "urgency_level"
	fieldUrgencyScore     = "urgency_score"
	fieldBudgetConstraint = "budget_constraint"
	fieldBudgetScore      = "budget_score"
	fieldFitAlignment     = "fit_alignment"
	fieldFitScore         = "fit_score"
	fieldEngagementHealth = "engagement_health"
	fieldEngagementScore  = "engagement_score"
	fieldTotalScore       = "total_score"
	fieldLeadStatusTag    = "lead_status_tag"
	fieldReasoning        = "reasoning"

	fieldCTAPricing   = "cta_pricing_clicked"
	fieldCTADemo      = "cta_demo_booked"
	fieldCTAFollowup  = "cta_followup_requested"
	fieldCTASample    = "cta_sample_requested"
	fieldCTAEscalated = "cta_escalated_to_human"
)

// DecodeError means a scoring blob was present but unusable.
type DecodeError struct {
	Key     string
	Snippet string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("analysis decode failed for %q: %v (blob: %s)", e.Key, e.Err, e.Snippet)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeAnalysis finds the scoring blob in analysis.data_collection_results
// and maps it onto a ParsedAnalysis. It returns nil, nil when the callback
// carries no blob.
func DecodeAnalysis(p types.CanonicalPayload) (*types.ParsedAnalysis, error) {
	analysis := payload.AnalysisOf(p)
	if analysis == nil {
		return nil, nil
	}
	key, raw, ok := findBlob(analysis)
	if !ok {
		return nil, nil
	}

	fields, err := blobFields(raw)
	if err != nil {
		return nil, &DecodeError{Key: key, Snippet: snippet(raw), Err: err}
	}
	out, err := mapAnalysis(fields)
	if err != nil {
		return nil, &DecodeError{Key: key, Snippet: snippet(raw), Err: err}
	}

	out.AnalysisSource = AnalysisSource
	out.CallSuccessful = payload.StringOf(analysis["call_successful"])
	out.TranscriptSummary = payload.StringOf(analysis["transcript_summary"])
	out.CallSummaryTitle = payload.StringOf(analysis["call_summary_title"])
	return out, nil
}

func findBlob(analysis map[string]any) (string, any, bool) {
	results, _ := analysis[payload.KeyDataCollection].(map[string]any)
	if len(results) == 0 {
		return "", nil, false
	}

	preferred := make(map[string]bool, len(blobKeyPriority))
	for _, k := range blobKeyPriority {
		preferred[k] = true
	}
	var rest []string
	for k := range results {
		if !preferred[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys := append(append([]string(nil), blobKeyPriority...), rest...)

	for _, k := range keys {
		entry, ok := results[k].(map[string]any)
		if !ok {
			continue
		}
		switch v := entry["value"].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return k, v, true
			}
		case map[string]any:
			return k, v, true
		}
	}
	return "", nil, false
}

func blobFields(raw any) (map[string]any, error) {
	if m, ok := raw.(map[string]any); ok {
		return m, nil
	}
	text, err := dictlit.ToJSON(raw.(string))
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse rewritten blob: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("unexpected data after analysis object")
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("analysis blob is %T, not an object", v)
	}
	return m, nil
}

func mapAnalysis(fields map[string]any) (*types.ParsedAnalysis, error) {
	r := &fieldReader{fields: fields}
	out := &types.ParsedAnalysis{
		IntentLevel:      r.str(fieldIntentLevel),
		IntentScore:      r.score(fieldIntentScore),
		UrgencyLevel:     r.str(fieldUrgencyLevel),
		UrgencyScore:     r.score(fieldUrgencyScore),
		BudgetConstraint: r.str(fieldBudgetConstraint),
		BudgetScore:      r.score(fieldBudgetScore),
		FitAlignment:     r.str(fieldFitAlignment),
		FitScore:         r.score(fieldFitScore),
		EngagementHealth: r.str(fieldEngagementHealth),
		EngagementScore:  r.score(fieldEngagementScore),
		TotalScore:       r.score(fieldTotalScore),
		LeadStatusTag:    r.str(fieldLeadStatusTag),
		CTAInteractions: types.CTAInteractions{
			PricingClicked:    r.flag(fieldCTAPricing),
			DemoBooked:        r.flag(fieldCTADemo),
			FollowupRequested: r.flag(fieldCTAFollowup),
			SampleRequested:   r.flag(fieldCTASample),
			EscalatedToHuman:  r.flag(fieldCTAEscalated),
		},
	}
	if s := r.str(fieldReasoning); s != nil {
		out.Reasoning = *s
	}
	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	return out, nil
}

// fieldReader collects type errors so one DecodeError names every bad field.
type fieldReader struct {
	fields map[string]any
	errs   []error
}

func (r *fieldReader) str(key string) *string {
	switch v := r.fields[key].(type) {
	case nil:
		return nil
	case string:
		return &v
	default:
		r.errs = append(r.errs, fmt.Errorf("%s: expected string, got %T", key, v))
		return nil
	}
}

func (r *fieldReader) score(key string) *int {
	v := r.fields[key]
	if v == nil {
		return nil
	}
	if n, ok := payload.IntOf(v); ok {
		return &n
	}
	r.errs = append(r.errs, fmt.Errorf("%s: expected integer, got %v", key, v))
	return nil
}

// flag reads a Yes/No CTA field. Only a case-insensitive "yes" or a boolean
// true counts as set.
func (r *fieldReader) flag(key string) bool {
	switch v := r.fields[key].(type) {
	case string:
		return strings.EqualFold(v, "yes")
	case bool:
		return v
	default:
		return false
	}
}

func snippet(raw any) string {
	s, ok := raw.(string)
	if !ok {
		b, _ := json.Marshal(raw)
		s = string(b)
	}
	const limit = 200
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
