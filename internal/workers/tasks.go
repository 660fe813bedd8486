// Package workers lists every job type this module can serve.
package workers

import (
	"mca-workers/internal/common/validation"

	car "mca-workers/internal/workers/application/create-application-record"
	dar "mca-workers/internal/workers/application/delete-application-record"
	uar "mca-workers/internal/workers/application/update-application-record"
	vad "mca-workers/internal/workers/application/validate-application-data"
	qp "mca-workers/internal/workers/data-access/query-postgresql"
	sa "mca-workers/internal/workers/data-access/search-applications"
	edf "mca-workers/internal/workers/document/extract-document-fields"
	met "mca-workers/internal/workers/infrastructure/manage-email-template"
	mdf "mca-workers/internal/workers/intake/merge-draft-fields"
	nwp "mca-workers/internal/workers/intake/normalize-webhook-payload"
	mlr "mca-workers/internal/workers/lender/manage-lender-record"
	ql "mca-workers/internal/workers/lender/qualify-lenders"
	rlm "mca-workers/internal/workers/lender/rank-lender-matches"
	cls "mca-workers/internal/workers/submission/create-lender-submissions"
	ndu "mca-workers/internal/workers/submission/notify-deal-update"
	rse "mca-workers/internal/workers/submission/render-submission-emails"
	uls "mca-workers/internal/workers/submission/update-lender-submission"
)

type Task struct {
	TaskType    string
	Category    string
	InputSchema func() validation.JSONSchema
}

var Tasks = []Task{
	{edf.TaskType, "document", edf.GetInputSchema},
	{nwp.TaskType, "intake", nwp.GetInputSchema},
	{mdf.TaskType, "intake", mdf.GetInputSchema},
	{vad.TaskType, "application", vad.GetInputSchema},
	{car.TaskType, "application", car.GetInputSchema},
	{uar.TaskType, "application", uar.GetInputSchema},
	{dar.TaskType, "application", dar.GetInputSchema},
	{ql.TaskType, "lender", ql.GetInputSchema},
	{rlm.TaskType, "lender", rlm.GetInputSchema},
	{mlr.TaskType, "lender", mlr.GetInputSchema},
	{cls.TaskType, "submission", cls.GetInputSchema},
	{uls.TaskType, "submission", uls.GetInputSchema},
	{rse.TaskType, "submission", rse.GetInputSchema},
	{ndu.TaskType, "submission", ndu.GetInputSchema},
	{qp.TaskType, "data-access", qp.GetInputSchema},
	{sa.TaskType, "data-access", sa.GetInputSchema},
	{met.TaskType, "infrastructure", met.GetInputSchema},
}

func TaskTypes() []string {
	out := make([]string, len(Tasks))
	for i, t := range Tasks {
		out[i] = t.TaskType
	}
	return out
}

func Lookup(taskType string) (Task, bool) {
	for _, t := range Tasks {
		if t.TaskType == taskType {
			return t, true
		}
	}
	return Task{}, false
}
