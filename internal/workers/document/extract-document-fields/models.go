package extractdocumentfields

import (
	"mca-workers/internal/common/validation"
	"mca-workers/internal/extraction"
)

// ManualEntryMessage is returned when the document could not be read.
const ManualEntryMessage = "extraction failed, fall back to manual entry"

type Input struct {
	DocumentBase64 string `json:"documentBase64"`
	Text           string `json:"text"`
	FileName       string `json:"fileName"`
}

type Output struct {
	Fields           extraction.Fields `json:"fields"`
	FieldsFound      int               `json:"fieldsFound"`
	ExtractionFailed bool              `json:"extractionFailed"`
	Message          string            `json:"message,omitempty"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"documentBase64": {Type: "string", Description: "Base64 encoded PDF", MinLength: validation.Int(1)},
			"text":           {Type: "string", Description: "Already extracted document text"},
			"fileName":       {Type: "string", MaxLength: validation.Int(255)},
		},
		AnyOf: []validation.Requirement{
			{Required: []string{"documentBase64"}},
			{Required: []string{"text"}},
		},
	}
}
