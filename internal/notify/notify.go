// Package notify delivers deal notifications to the external store.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"mca-workers/internal/common/config"
	commonhttp "mca-workers/internal/common/http"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/models"
)

// Notifier sends one payload to a named endpoint. Implementations report
// failure in the result and never panic; callers decide whether it matters.
type Notifier interface {
	Notify(ctx context.Context, endpoint models.NotificationEndpoint, payload interface{}) models.NotificationResult
}

// HTTPNotifier posts JSON to the webhook base URL plus the endpoint path.
type HTTPNotifier struct {
	client *commonhttp.Client
	urls   map[models.NotificationEndpoint]string
	logger logger.Logger
	now    func() time.Time
}

func NewHTTPNotifier(cfg config.WebhookConfig, log logger.Logger) *HTTPNotifier {
	base := strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPNotifier{
		client: commonhttp.NewClient(
			time.Duration(cfg.Timeout)*time.Millisecond,
			cfg.MaxAttempts,
			time.Duration(cfg.RetryDelay)*time.Millisecond,
		),
		urls: map[models.NotificationEndpoint]string{
			models.EndpointNewDeal:              base + cfg.NewDealPath,
			models.EndpointUpdatingApplications: base + cfg.UpdatingApplicationsPath,
		},
		logger: log.WithFields(map[string]interface{}{"transport": "http"}),
		now:    time.Now,
	}
}

func (n *HTTPNotifier) Notify(ctx context.Context, endpoint models.NotificationEndpoint, payload interface{}) models.NotificationResult {
	result := models.NotificationResult{Endpoint: endpoint, SentAt: n.now().UTC()}

	url, ok := n.urls[endpoint]
	if !ok {
		result.Error = fmt.Sprintf("unknown endpoint %q", endpoint)
		return record(n.logger, result)
	}

	attempts, err := n.client.PostJSON(ctx, url, payload)
	result.Attempts = attempts
	if err != nil {
		result.Error = err.Error()
	} else {
		result.Delivered = true
	}
	return record(n.logger, result)
}

// SNSPublisher is the subset of the SNS client the notifier needs.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes the payload to one topic; subscribers route on the
// "endpoint" message attribute.
type SNSNotifier struct {
	client   SNSPublisher
	topicARN string
	logger   logger.Logger
	now      func() time.Time
}

func NewSNSNotifier(client SNSPublisher, topicARN string, log logger.Logger) *SNSNotifier {
	return &SNSNotifier{
		client:   client,
		topicARN: topicARN,
		logger:   log.WithFields(map[string]interface{}{"transport": "sns"}),
		now:      time.Now,
	}
}

func (n *SNSNotifier) Notify(ctx context.Context, endpoint models.NotificationEndpoint, payload interface{}) models.NotificationResult {
	result := models.NotificationResult{Endpoint: endpoint, SentAt: n.now().UTC(), Attempts: 1}

	body, err := json.Marshal(payload)
	if err != nil {
		result.Error = fmt.Sprintf("marshal payload: %v", err)
		return record(n.logger, result)
	}

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"endpoint": {DataType: aws.String("String"), StringValue: aws.String(string(endpoint))},
		},
	})
	if err != nil {
		result.Error = err.Error()
	} else {
		result.Delivered = true
	}
	return record(n.logger, result)
}

func record(log logger.Logger, result models.NotificationResult) models.NotificationResult {
	outcome := "delivered"
	if !result.Delivered {
		outcome = "failed"
		log.Warn("notification not delivered", map[string]interface{}{
			"endpoint": string(result.Endpoint),
			"attempts": result.Attempts,
			"error":    result.Error,
		})
	} else {
		log.Debug("notification delivered", map[string]interface{}{
			"endpoint": string(result.Endpoint),
			"attempts": result.Attempts,
		})
	}
	metrics.WebhookDeliveries.WithLabelValues(string(result.Endpoint), outcome).Inc()
	return result
}

// New builds the notifier selected by the webhook transport setting.
func New(cfg config.WebhookConfig, publisher SNSPublisher, topicARN string, log logger.Logger) (Notifier, error) {
	switch cfg.Transport {
	case "", "http":
		return NewHTTPNotifier(cfg, log), nil
	case "sns":
		if publisher == nil {
			return nil, fmt.Errorf("sns transport requires a publisher")
		}
		return NewSNSNotifier(publisher, topicARN, log), nil
	default:
		return nil, fmt.Errorf("unknown webhook transport %q", cfg.Transport)
	}
}
