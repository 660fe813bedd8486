// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import (
	"mca-workers/internal/common/validation"
)

type Input struct {
	QueryType     string `json:"queryType"`
	ApplicationID string `json:"applicationId,omitempty"`
	Status        string `json:"status,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"queryType"},
		Properties: map[string]validation.Property{
			"queryType":     {Type: "string", MinLength: validation.Int(1)},
			"applicationId": {Type: "string"},
			"status":        {Type: "string"},
			"limit":         {Type: "integer", Minimum: validation.Float(0)},
		},
	}
}
