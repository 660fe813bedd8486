package camunda

import (
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"

	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/validation"
)

// DecodeVariables checks the job variables against schema and decodes them
// into out. Failures come back as non-retryable StandardErrors.
func DecodeVariables(job entities.Job, schema validation.JSONSchema, out interface{}) error {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return errors.NewInputParsingError(err)
	}

	if result := validation.ValidateInput(vars, schema); !result.Valid {
		return errors.NewInputValidationError(strings.Join(result.GetErrorMessages(), "; "))
	}

	if err := job.GetVariablesAs(out); err != nil {
		return errors.NewInputParsingError(err)
	}
	return nil
}
