package aggregator

import (
	"sort"

	"voice-leads-go/internal/types"
)

type LeadInsight struct {
	TotalCalls          int                `json:"total_calls"`
	ValidCalls          int                `json:"valid_calls"`
	InvalidCalls        int                `json:"invalid_calls"`
	AnalysisCounts      map[string]int     `json:"analysis_counts"`
	LeadStatusCounts    map[string]int     `json:"lead_status_counts"`
	CTARates            map[string]float64 `json:"cta_rates"`
	AverageTotalScore   float64            `json:"average_total_score"`
	TotalMinutes        int                `json:"total_minutes"`
	TopErrors           []string           `json:"top_errors,omitempty"`
	AnalysisFailureRate float64            `json:"analysis_failure_rate"`
}

const topErrorLimit = 5

// Aggregate rolls processed calls up into a lead summary. Rates are taken
// over calls whose analysis decoded.
func Aggregate(results []types.ProcessingResult) LeadInsight {
	ins := LeadInsight{
		TotalCalls: len(results),
		AnalysisCounts: map[string]int{
			string(types.AnalysisDecoded): 0,
			string(types.AnalysisAbsent):  0,
			string(types.AnalysisFailed):  0,
		},
		LeadStatusCounts: map[string]int{},
		CTARates:         map[string]float64{},
	}

	ctaCounts := map[string]int{}
	errCounts := map[string]int{}
	scoreSum, scored, decoded := 0, 0, 0

	for _, r := range results {
		if r.IsValid {
			ins.ValidCalls++
		} else {
			ins.InvalidCalls++
		}
		for _, e := range r.Errors {
			errCounts[e]++
		}
		if r.AnalysisStatus != "" {
			ins.AnalysisCounts[string(r.AnalysisStatus)]++
		}
		ins.TotalMinutes += r.CallMetadata.CallDurationMinutes

		a := r.AnalysisData
		if a == nil {
			continue
		}
		decoded++
		if a.LeadStatusTag != nil {
			ins.LeadStatusCounts[*a.LeadStatusTag]++
		}
		if a.TotalScore != nil {
			scoreSum += *a.TotalScore
			scored++
		}
		for name, on := range ctaFlags(a.CTAInteractions) {
			if on {
				ctaCounts[name]++
			}
		}
	}

	for _, name := range CTANames {
		if decoded > 0 {
			ins.CTARates[name] = float64(ctaCounts[name]) / float64(decoded)
		} else {
			ins.CTARates[name] = 0
		}
	}
	if scored > 0 {
		ins.AverageTotalScore = float64(scoreSum) / float64(scored)
	}
	if attempted := decoded + ins.AnalysisCounts[string(types.AnalysisFailed)]; attempted > 0 {
		ins.AnalysisFailureRate = float64(ins.AnalysisCounts[string(types.AnalysisFailed)]) / float64(attempted)
	}
	ins.TopErrors = topErrors(errCounts)
	return ins
}

// CTANames lists the keys of LeadInsight.CTARates.
var CTANames = []string{"pricingClicked", "demoBooked", "followupRequested", "sampleRequested", "escalatedToHuman"}

func ctaFlags(c types.CTAInteractions) map[string]bool {
	return map[string]bool{
		"pricingClicked":    c.PricingClicked,
		"demoBooked":        c.DemoBooked,
		"followupRequested": c.FollowupRequested,
		"sampleRequested":   c.SampleRequested,
		"escalatedToHuman":  c.EscalatedToHuman,
	}
}

func topErrors(counts map[string]int) []string {
	type ec struct {
		msg string
		n   int
	}
	var arr []ec
	for k, v := range counts {
		arr = append(arr, ec{k, v})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].n != arr[j].n {
			return arr[i].n > arr[j].n
		}
		return arr[i].msg < arr[j].msg
	})
	var out []string
	for i := 0; i < len(arr) && i < topErrorLimit; i++ {
		out = append(out, arr[i].msg)
	}
	return out
}
