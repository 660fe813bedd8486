// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeApplicationList    QueryType = "application_list"
	QueryTypeApplicationDetails QueryType = "application_details"
	QueryTypeLenderList         QueryType = "lender_list"
	QueryTypeLenderSubmissions  QueryType = "lender_submissions"
)
