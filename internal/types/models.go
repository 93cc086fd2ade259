package types

// RawPayload is whatever the ingest layer decoded from the callback body.
type RawPayload = any

// CanonicalPayload is the normalized webhook shape. It stays untyped so fields
// the pipeline does not know about survive normalization.
type CanonicalPayload = map[string]any

type AnalysisStatus string

const (
	AnalysisDecoded AnalysisStatus = "decoded"
	AnalysisAbsent  AnalysisStatus = "absent"
	AnalysisFailed  AnalysisStatus = "failed"
)

const (
	CallTypeInternal = "internal"
	CallTypePhone    = "phone"
)

// DynamicVariables is the typed view over
// conversation_initiation_client_data.dynamic_variables.
type DynamicVariables struct {
	ConversationID   string `json:"conversationId"`
	AgentID          string `json:"agentId"`
	CallerID         string `json:"callerId"`
	CalledNumber     string `json:"calledNumber,omitempty"`
	CallDurationSecs int    `json:"callDurationSecs"`
	TimeUTC          string `json:"timeUtc"`
}

type CTAInteractions struct {
	PricingClicked    bool `json:"pricingClicked"`
	DemoBooked        bool `json:"demoBooked"`
	FollowupRequested bool `json:"followupRequested"`
	SampleRequested   bool `json:"sampleRequested"`
	EscalatedToHuman  bool `json:"escalatedToHuman"`
}

// ParsedAnalysis is the decoded lead-scoring blob. Pointer fields are nil when
// the provider sent None or omitted the key.
type ParsedAnalysis struct {
	IntentLevel      *string `json:"intentLevel" validate:"required"`
	IntentScore      *int    `json:"intentScore" validate:"required,min=1,max=3"`
	UrgencyLevel     *string `json:"urgencyLevel" validate:"required"`
	UrgencyScore     *int    `json:"urgencyScore" validate:"required,min=1,max=3"`
	BudgetConstraint *string `json:"budgetConstraint"`
	BudgetScore      *int    `json:"budgetScore" validate:"omitempty,min=1,max=3"`
	FitAlignment     *string `json:"fitAlignment"`
	FitScore         *int    `json:"fitScore" validate:"omitempty,min=1,max=3"`
	EngagementHealth *string `json:"engagementHealth"`
	EngagementScore  *int    `json:"engagementScore" validate:"omitempty,min=1,max=3"`
	TotalScore       *int    `json:"totalScore" validate:"required,min=0,max=100"`
	LeadStatusTag    *string `json:"leadStatusTag" validate:"required"`
	Reasoning        string  `json:"reasoning,omitempty"`

	CTAInteractions CTAInteractions `json:"ctaInteractions"`

	CallSuccessful    string `json:"callSuccessful,omitempty"`
	TranscriptSummary string `json:"transcriptSummary,omitempty"`
	CallSummaryTitle  string `json:"callSummaryTitle,omitempty"`
	AnalysisSource    string `json:"analysisSource"`
}

type CallMetadata struct {
	ConversationID      string `json:"conversationId"`
	AgentID             string `json:"agentId,omitempty"`
	CallerID            string `json:"callerId"`
	CalledNumber        string `json:"calledNumber,omitempty"`
	CallDurationSecs    int    `json:"callDurationSecs"`
	CallDurationMinutes int    `json:"callDurationMinutes"`
	CallTimestamp       string `json:"callTimestamp"`
	CallType            string `json:"callType"`
	CallAnalysisSummary string `json:"callAnalysisSummary,omitempty"`
}

// ProcessingResult is the pipeline's only output.
type ProcessingResult struct {
	IsValid        bool             `json:"isValid"`
	Errors         []string         `json:"errors"`
	AnalysisStatus AnalysisStatus   `json:"analysisStatus"`
	AnalysisData   *ParsedAnalysis  `json:"analysisData,omitempty"`
	CallMetadata   CallMetadata     `json:"callMetadata"`
	NormalizedData CanonicalPayload `json:"normalizedData"`
}
