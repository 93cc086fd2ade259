package payload

import (
	"strings"

	"voice-leads-go/internal/types"
)

// StructuralError lists every required identifying field that is missing.
type StructuralError struct {
	Missing []string
}

func (e *StructuralError) Error() string {
	return "payload structure invalid: missing " + strings.Join(e.Missing, ", ")
}

// Messages returns one human-readable line per missing field.
func (e *StructuralError) Messages() []string {
	out := make([]string, 0, len(e.Missing))
	for _, field := range e.Missing {
		out = append(out, "missing required field: "+field)
	}
	return out
}

// ValidateStructure checks the repaired payload for the fields that cannot be
// defaulted. All failures are collected before returning.
func ValidateStructure(p types.CanonicalPayload) error {
	var missing []string

	client := ClientData(p)
	if client == nil {
		missing = append(missing, KeyClientData)
	}
	dv := DynamicVariablesOf(p)
	if dv == nil {
		missing = append(missing, KeyClientData+"."+KeyDynamicVariables)
	}
	if isBlank(dv[VarConversationID]) {
		missing = append(missing, KeyDynamicVariables+"."+VarConversationID)
	}
	if isBlank(dv[VarAgentID]) {
		missing = append(missing, KeyDynamicVariables+"."+VarAgentID)
	}

	if len(missing) > 0 {
		return &StructuralError{Missing: missing}
	}
	return nil
}
