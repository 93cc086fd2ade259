package logger

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"voice-leads-go/internal/types"
)

func TestWithRequestAssignsID(t *testing.T) {
	var buf bytes.Buffer
	log := Build("production", "info", &buf)

	r := httptest.NewRequest("POST", "/webhooks/call-completed", nil)
	log.WithRequest(r).Info("hit")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line: %v", err)
	}
	if id, _ := line["req_id"].(string); len(id) != 36 {
		t.Fatalf("expected generated uuid, got %v", line["req_id"])
	}

	buf.Reset()
	r.Header.Set("X-Request-ID", "abc")
	log.WithRequest(r).Info("hit")
	if !bytes.Contains(buf.Bytes(), []byte(`"req_id":"abc"`)) {
		t.Fatalf("expected caller request id, got %s", buf.String())
	}
}

func TestBuildLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Build("production", "warn", &buf)
	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %s", buf.String())
	}
}

func TestResultFields(t *testing.T) {
	tag := "Hot Lead"
	f := ResultFields(types.ProcessingResult{
		IsValid:        false,
		Errors:         []string{"x"},
		AnalysisStatus: types.AnalysisFailed,
		AnalysisData:   &types.ParsedAnalysis{LeadStatusTag: &tag},
		CallMetadata:   types.CallMetadata{ConversationID: "c1"},
	})
	if f["conversation_id"] != "c1" || f["lead_status"] != "Hot Lead" {
		t.Fatalf("unexpected fields %v", f)
	}
	if _, ok := f["errors"]; !ok {
		t.Fatal("expected errors field")
	}
}
