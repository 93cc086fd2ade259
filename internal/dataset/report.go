package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"voice-leads-go/internal/aggregator"
	"voice-leads-go/internal/types"
)

const (
	leadsSheet   = "Leads"
	summarySheet = "Summary"
)

var leadsHeader = []any{
	"Conversation ID", "Agent ID", "Caller ID", "Call Type", "Call Time", "Minutes",
	"Valid", "Analysis", "Lead Status", "Total Score", "Intent", "Urgency",
	"Demo Booked", "Escalated", "Errors",
}

// WriteReport writes one Leads row per result plus a Summary sheet built
// from the aggregated insight.
func WriteReport(path string, results []types.ProcessingResult, ins aggregator.LeadInsight) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leadsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(leadsSheet, "A1", &leadsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := leadRow(r)
		if err := f.SetSheetRow(leadsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	for i, kv := range summaryRows(ins) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := kv
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func leadRow(r types.ProcessingResult) []any {
	m := r.CallMetadata
	row := []any{
		m.ConversationID, m.AgentID, m.CallerID, m.CallType, m.CallTimestamp, m.CallDurationMinutes,
		r.IsValid, string(r.AnalysisStatus), "", "", "", "", false, false,
		strings.Join(r.Errors, "; "),
	}
	if a := r.AnalysisData; a != nil {
		row[8] = deref(a.LeadStatusTag)
		if a.TotalScore != nil {
			row[9] = *a.TotalScore
		}
		row[10] = deref(a.IntentLevel)
		row[11] = deref(a.UrgencyLevel)
		row[12] = a.CTAInteractions.DemoBooked
		row[13] = a.CTAInteractions.EscalatedToHuman
	}
	return row
}

func summaryRows(ins aggregator.LeadInsight) [][]any {
	rows := [][]any{
		{"Metric", "Value"},
		{"Total calls", ins.TotalCalls},
		{"Valid calls", ins.ValidCalls},
		{"Invalid calls", ins.InvalidCalls},
		{"Average total score", ins.AverageTotalScore},
		{"Total minutes", ins.TotalMinutes},
		{"Analysis failure rate", ins.AnalysisFailureRate},
	}
	for _, k := range sortedKeys(ins.AnalysisCounts) {
		rows = append(rows, []any{"Analysis " + k, ins.AnalysisCounts[k]})
	}
	for _, k := range sortedKeys(ins.LeadStatusCounts) {
		rows = append(rows, []any{"Lead status: " + k, ins.LeadStatusCounts[k]})
	}
	for _, k := range aggregator.CTANames {
		rows = append(rows, []any{"CTA rate: " + k, ins.CTARates[k]})
	}
	return rows
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
