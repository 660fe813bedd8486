package mergedraftfields

import (
	"mca-workers/internal/common/validation"
	"mca-workers/internal/draft"
)

type Input struct {
	DraftID string            `json:"draftId"`
	Source  draft.Source      `json:"source"`
	Fields  map[string]string `json:"fields"`
}

type Output struct {
	DraftID       string                      `json:"draftId"`
	Values        map[string]string           `json:"values"`
	Provenance    map[string]draft.Provenance `json:"provenance"`
	ChangedFields []string                    `json:"changedFields"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"draftId", "source", "fields"},
		Properties: map[string]validation.Property{
			"draftId": {Type: "string", MinLength: validation.Int(1)},
			"source":  {Type: "string", Enum: []string{"document", "webhook", "user"}},
			"fields":  {Type: "object", Description: "Field name to string value"},
		},
	}
}
