package actionable

import (
	"fmt"
	"strings"

	"voice-leads-go/internal/aggregator"
)

type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

const (
	failureThreshold    = 0.2
	escalationThreshold = 0.25
	hotShareThreshold   = 0.3
	minSample           = 5
)

// Generate picks the most pressing operator action. Rules are checked in
// order of severity and the first match wins.
func Generate(ins aggregator.LeadInsight) ActionCard {
	if ins.TotalCalls < minSample {
		return ActionCard{
			Insight: fmt.Sprintf("Only %d calls processed", ins.TotalCalls),
			Action:  "Monitor and collect more data",
			Impact:  "Low immediate intervention",
		}
	}

	if ins.AnalysisFailureRate >= failureThreshold {
		return ActionCard{
			Insight: fmt.Sprintf("Lead analysis failed for %.0f%% of scored calls", ins.AnalysisFailureRate*100),
			Action:  "Review the agent's data collection prompt and scoring output format",
			Impact:  "Recover lead scores that are currently dropped",
		}
	}

	if rate := ins.CTARates["escalatedToHuman"]; rate >= escalationThreshold {
		return ActionCard{
			Insight: fmt.Sprintf("%.0f%% of analysed calls asked for a human", rate*100),
			Action:  "Staff a live handoff queue during call hours",
			Impact:  "Keep escalated prospects from churning",
		}
	}

	if share := hotShare(ins); share >= hotShareThreshold {
		return ActionCard{
			Insight: fmt.Sprintf("Hot leads are %.0f%% of analysed calls", share*100),
			Action:  "Route hot leads to sales for same-day follow-up",
			Impact:  "Higher conversion on high-intent callers",
		}
	}

	return ActionCard{
		Insight: "No strong lead pattern detected",
		Action:  "Monitor and collect more data",
		Impact:  "Low immediate intervention",
	}
}

func hotShare(ins aggregator.LeadInsight) float64 {
	total, hot := 0, 0
	for tag, n := range ins.LeadStatusCounts {
		total += n
		if strings.Contains(strings.ToLower(tag), "hot") {
			hot += n
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hot) / float64(total)
}
