package extractdocumentfields

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/extraction"
)

const TaskType = "extract-document-fields"

type Handler struct {
	config    *Config
	extractor *extraction.Extractor
	decoder   extraction.Decoder
	logger    logger.Logger
	errors    *errors.ErrorHandler
}

func NewHandler(cfg *Config, extractor *extraction.Extractor, decoder extraction.Decoder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    cfg,
		extractor: extractor,
		decoder:   decoder,
		logger:    log,
		errors:    errors.NewErrorHandler(log),
	}
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

// Execute extracts fields from the document. An unreadable document is not
// an error: the job completes with extractionFailed so the process can
// route to manual entry.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	var (
		fields extraction.Fields
		err    error
	)

	if input.DocumentBase64 != "" {
		data, decodeErr := base64.StdEncoding.DecodeString(input.DocumentBase64)
		if decodeErr != nil {
			return nil, errors.NewInputValidationError(fmt.Sprintf("documentBase64: %v", decodeErr))
		}
		if h.config.MaxDocumentBytes > 0 && len(data) > h.config.MaxDocumentBytes {
			return nil, errors.NewInputValidationError(fmt.Sprintf("document exceeds %d bytes", h.config.MaxDocumentBytes))
		}
		fields, err = h.extractor.ExtractDocument(ctx, h.decoder, data)
	} else {
		fields = h.extractor.Extract(input.Text)
	}

	if err != nil {
		if !stderrors.Is(err, extraction.ErrExtractionFailed) {
			return nil, errors.NewInternalError(err)
		}
		h.logger.Warn("document extraction failed", map[string]interface{}{
			"fileName": input.FileName,
			"error":    err.Error(),
		})
		metrics.ExtractionFieldsFound.Observe(0)
		return &Output{Fields: fields, ExtractionFailed: true, Message: ManualEntryMessage}, nil
	}

	found := fields.Found()
	metrics.ExtractionFieldsFound.Observe(float64(found))
	h.logger.Info("document fields extracted", map[string]interface{}{
		"fileName":    input.FileName,
		"fieldsFound": found,
	})
	return &Output{Fields: fields, FieldsFound: found}, nil
}
