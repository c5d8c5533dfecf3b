package redis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/extract"
	"github.com/invoicelab/insights-agent/internal/models"
)

type Evaluator interface {
	Evaluate(ctx context.Context, img extract.Image, insights []string, parserRawText string) (*models.EvaluationResult, error)
}

// Consumer reads evaluation requests off a Redis stream, evaluates them, and
// publishes the outcome to the results stream. Undecodable messages are acked
// and dropped so they cannot wedge the group.
type Consumer struct {
	client        *redis.Client
	stream        string
	resultsStream string
	groupID       string
	consumerName  string
	evaluator     Evaluator
	logger        *zerolog.Logger
}

func NewConsumer(client *redis.Client, cfg *RedisStreamConfig, evaluator Evaluator, logger *zerolog.Logger) *Consumer {
	return &Consumer{
		client:        client,
		stream:        cfg.Stream,
		resultsStream: cfg.ResultsStream,
		groupID:       cfg.Group,
		consumerName:  cfg.ConsumerName,
		evaluator:     evaluator,
		logger:        logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.groupID, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("Consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msgs, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    1,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				// timeout, no message -> loop again
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err() // context cancelled during block
			}

			c.logger.Error().Err(err).Msg("Failed to read from stream")
			continue
		}

		for _, msg := range msgs[0].Messages {
			c.process(ctx, msg)
		}
	}
}

func (c *Consumer) Stop() error {
	// No-op
	return nil
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	c.logger.Info().Str("id", msg.ID).Msg("Message received")

	payload, ok := msg.Values["payload"].(string)
	if !ok {
		c.logger.Error().Str("id", msg.ID).Msg("Missing payload field")
		c.ack(ctx, msg.ID)
		return
	}

	var evalRequest models.EvaluationRequest
	if err := json.Unmarshal([]byte(payload), &evalRequest); err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		c.ack(ctx, msg.ID) // bad message — ACK to skip it
		return
	}

	img, err := resolveImage(evalRequest)
	if err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Str("request_id", evalRequest.RequestID).Msg("Failed to load image")
		c.publish(ctx, evalRequest.RequestID, nil, err)
		c.ack(ctx, msg.ID)
		return
	}

	result, err := c.evaluator.Evaluate(ctx, img, evalRequest.Insights, evalRequest.ParserRawText)
	if err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Str("request_id", evalRequest.RequestID).Msg("Evaluation failed")
		c.publish(ctx, evalRequest.RequestID, nil, err)
		c.ack(ctx, msg.ID)
		return
	}

	c.logger.Info().
		Str("id", msg.ID).
		Str("request_id", evalRequest.RequestID).
		Float64("overall_score", result.OverallScore).
		Msg("Evaluation complete")

	c.publish(ctx, evalRequest.RequestID, result, nil)
	c.ack(ctx, msg.ID)
}

type resultMessage struct {
	RequestID string                   `json:"request_id"`
	Result    *models.EvaluationResult `json:"result,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

func (c *Consumer) publish(ctx context.Context, requestID string, result *models.EvaluationResult, evalErr error) {
	msg := resultMessage{RequestID: requestID, Result: result}
	if evalErr != nil {
		msg.Error = evalErr.Error()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error().Err(err).Str("request_id", requestID).Msg("Failed to encode result")
		return
	}

	err = c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.resultsStream,
		Values: map[string]any{"payload": string(payload)},
	}).Err()
	if err != nil {
		c.logger.Error().Err(err).Str("request_id", requestID).Msg("Failed to publish result")
	}
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}

func resolveImage(req models.EvaluationRequest) (extract.Image, error) {
	if len(req.ImageData) > 0 {
		mimeType := req.MIMEType
		if mimeType == "" {
			mimeType = http.DetectContentType(req.ImageData)
		}
		return extract.Image{Path: req.ImagePath, Data: req.ImageData, MIME: mimeType}, nil
	}
	return extract.LoadImage(req.ImagePath)
}
