// Package contract checks processing results against the JSON schema the
// persistence side consumes.
package contract

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"

	"voice-leads-go/internal/types"
)

//go:embed result.schema.json
var resultSchema []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiled, compileErr = compiler.Compile(resultSchema)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile result schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// ValidateJSON validates an encoded ProcessingResult.
func ValidateJSON(data []byte) error {
	if !json.Valid(data) {
		return errors.New("result contract violated: malformed JSON")
	}
	s, err := schema()
	if err != nil {
		return err
	}
	result := s.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("result contract violated: %v", result.Errors)
}

// ValidateResult encodes res and validates it.
func ValidateResult(res types.ProcessingResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return ValidateJSON(data)
}
