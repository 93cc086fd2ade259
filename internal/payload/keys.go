package payload

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"voice-leads-go/internal/types"
)

const (
	KeyClientData       = "conversation_initiation_client_data"
	KeyDynamicVariables = "dynamic_variables"
	KeyAnalysis         = "analysis"
	KeyDataCollection   = "data_collection_results"

	VarConversationID = "system__conversation_id"
	VarAgentID        = "system__agent_id"
	VarCallerID       = "system__caller_id"
	VarCalledNumber   = "system__called_number"
	VarCallDuration   = "system__call_duration_secs"
	VarTimeUTC        = "system__time_utc"
)

// ISOLayout matches the millisecond UTC timestamps the provider emits.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ClientData returns the conversation_initiation_client_data object, or nil.
func ClientData(p types.CanonicalPayload) map[string]any {
	m, _ := p[KeyClientData].(map[string]any)
	return m
}

// DynamicVariablesOf returns the raw dynamic_variables object, or nil.
func DynamicVariablesOf(p types.CanonicalPayload) map[string]any {
	m, _ := ClientData(p)[KeyDynamicVariables].(map[string]any)
	return m
}

// AnalysisOf returns the top-level analysis object, or nil.
func AnalysisOf(p types.CanonicalPayload) map[string]any {
	m, _ := p[KeyAnalysis].(map[string]any)
	return m
}

// ReadDynamicVariables projects the dynamic variables onto their typed view.
// Values the provider sent with the wrong type degrade to zero values.
func ReadDynamicVariables(p types.CanonicalPayload) types.DynamicVariables {
	dv := DynamicVariablesOf(p)
	secs, _ := IntOf(dv[VarCallDuration])
	if secs < 0 {
		secs = 0
	}
	return types.DynamicVariables{
		ConversationID:   StringOf(dv[VarConversationID]),
		AgentID:          StringOf(dv[VarAgentID]),
		CallerID:         StringOf(dv[VarCallerID]),
		CalledNumber:     StringOf(dv[VarCalledNumber]),
		CallDurationSecs: secs,
		TimeUTC:          StringOf(dv[VarTimeUTC]),
	}
}

// StringOf renders scalar values as strings. Objects, arrays and nil yield "".
func StringOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// IntOf accepts integers, integral floats and numeric strings.
func IntOf(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return IntOf(f)
	case string:
		s := strings.TrimSpace(t)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return IntOf(f)
	default:
		return 0, false
	}
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, json.Number, float64, int, int64, bool:
		return true
	default:
		return false
	}
}

// deepCopy clones the map/slice tree produced by encoding/json so later
// stages can rewrite it without touching the caller's value.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
