package normalizewebhookpayload

import "mca-workers/internal/common/validation"

type Input struct {
	Origin  string                 `json:"origin"`
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

type Output struct {
	Fields      map[string]string `json:"fields"`
	FieldsFound int               `json:"fieldsFound"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"origin", "type", "payload"},
		Properties: map[string]validation.Property{
			"origin":  {Type: "string", Description: "Origin of the form filler that sent the event"},
			"type":    {Type: "string"},
			"payload": {Type: "object"},
		},
	}
}
