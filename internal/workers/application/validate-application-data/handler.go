// internal/workers/application/validate-application-data/handler.go
package validateapplicationdata

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/common/validation"
	"mca-workers/internal/models"
)

const TaskType = "validate-application-data"

type Handler struct {
	config *Config
	logger logger.Logger
	errors *errors.ErrorHandler
}

func NewHandler(cfg *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{config: cfg, logger: log, errors: errors.NewErrorHandler(log)}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.HandleContext(context.Background(), client, job)
}

func (h *Handler) HandleContext(parent context.Context, client worker.JobClient, job entities.Job) {
	done := metrics.TrackJob(TaskType)
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(parent, h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeVariables(job, GetInputSchema(), &input); err != nil {
		done(h.errors.HandleJobError(ctx, client, job, err).Code)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		done(h.errors.HandleJobError(ctx, client, job, err).Code)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
		done(string(errors.ErrCodeEngineUnavailable))
		return
	}
	done("")
}

// Execute coerces the submitted values into a profile and checks the form
// rules. Rule violations are reported in the output, not as job errors.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	data := canonicalKeys(input.Application)

	profile, fieldErrs := coerce(data)

	ruleErrs, err := validation.ValidateStruct(profile)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	reported := map[string]bool{}
	for _, fe := range fieldErrs {
		reported[fe.Field] = true
	}
	for _, fe := range ruleErrs {
		if !reported[fe.Field] {
			fieldErrs = append(fieldErrs, fe)
			reported[fe.Field] = true
		}
	}

	if len(fieldErrs) > 0 {
		h.logger.Info("application failed validation", map[string]interface{}{"errors": len(fieldErrs)})
	} else {
		fieldErrs = []validation.FieldError{}
	}
	return &Output{
		IsValid:          len(fieldErrs) == 0,
		ValidationErrors: fieldErrs,
		Application:      profile,
	}, nil
}

func canonicalKeys(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if alias, ok := fieldAliases[k]; ok {
			if _, direct := in[alias]; direct {
				continue
			}
			k = alias
		}
		out[k] = v
	}
	return out
}

func coerce(data map[string]interface{}) (*models.ApplicantProfile, []validation.FieldError) {
	var errs []validation.FieldError
	p := &models.ApplicantProfile{
		BusinessName: text(data["businessName"]),
		OwnerName:    text(data["ownerName"]),
		Email:        text(data["email"]),
		Phone:        text(data["phone"]),
		Address:      text(data["address"]),
		EIN:          text(data["ein"]),
		BusinessType: text(data["businessType"]),
		Industry:     text(data["industry"]),
		Documents:    documents(data["documents"]),
	}

	required := map[string]bool{}
	for _, f := range requiredNumbers {
		required[f] = true
	}

	num := func(field string) float64 {
		v, present, err := number(data[field])
		switch {
		case err != nil:
			errs = append(errs, validation.FieldError{Field: field, Code: "INVALID_NUMBER", Message: fmt.Sprintf("%s must be a number", field)})
		case !present && required[field]:
			errs = append(errs, validation.FieldError{Field: field, Code: "REQUIRED", Message: fmt.Sprintf("%s is required", field)})
		}
		return v
	}

	p.YearsInBusiness = num("yearsInBusiness")
	p.NumberOfEmployees = int(num("numberOfEmployees"))
	p.AnnualRevenue = num("annualRevenue")
	p.MonthlyRevenue = num("monthlyRevenue")
	p.MonthlyDeposits = num("monthlyDeposits")
	p.ExistingDebt = num("existingDebt")
	p.CreditScore = int(num("creditScore"))
	p.RequestedAmount = num("requestedAmount")
	return p, errs
}

func text(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// number accepts JSON numbers and numeric strings with "$" and "," noise.
func number(v interface{}) (value float64, present bool, err error) {
	switch t := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return t, true, nil
	case string:
		s := strings.NewReplacer(",", "", "$", "").Replace(strings.TrimSpace(t))
		if s == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, true, err
		}
		return f, true, nil
	default:
		return 0, true, fmt.Errorf("unexpected %T", v)
	}
}

func documents(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
