// internal/workers/data-access/search-applications/models.go
package searchapplications

import (
	"mca-workers/internal/common/validation"
	"mca-workers/internal/models"
	"mca-workers/internal/search"
)

type Input = search.Query

type Output struct {
	Hits     []models.Application `json:"hits"`
	Total    int                  `json:"total"`
	MaxScore float64              `json:"maxScore"`
	Took     int                  `json:"took"` // milliseconds, as reported by Elasticsearch
}

func GetInputSchema() validation.JSONSchema {
	statuses := make([]string, 0, len(models.ApplicationStatuses))
	for _, s := range models.ApplicationStatuses {
		statuses = append(statuses, string(s))
	}
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"text":      {Type: "string", MaxLength: validation.Int(200)},
			"status":    {Type: "string", Enum: statuses},
			"industry":  {Type: "string", Enum: models.Industries},
			"minAmount": {Type: "number", Minimum: validation.Float(0)},
			"maxAmount": {Type: "number", Minimum: validation.Float(0)},
			"from":      {Type: "integer", Minimum: validation.Float(0)},
			"size":      {Type: "integer", Minimum: validation.Float(0), Maximum: validation.Float(100)},
		},
	}
}
