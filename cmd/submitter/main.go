package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"autoapply-backend/internal/autoapply"
	"autoapply-backend/internal/bootstrap"
	"autoapply-backend/internal/queue"
	"autoapply-backend/internal/shared/config"
	"autoapply-backend/internal/shared/metrics"
	"autoapply-backend/internal/shared/telemetry"
)

const (
	defaultRegion             = "us-east-1"
	defaultVisibilitySeconds  = 300
	defaultWorkerConcurrency  = 4
	defaultShutdownTimeoutSec = 30

	// Receives beyond this mark the entry failed instead of retrying forever.
	maxReceiveCount = 5
)

func main() {
	cfg := config.Load()

	queueURL := strings.TrimSpace(cfg.SubmissionQueueURL)
	if queueURL == "" {
		log.Fatal("AA_SQS_QUEUE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	visibilitySeconds := envInt("AA_SQS_VISIBILITY_TIMEOUT_SECONDS", defaultVisibilitySeconds)
	concurrency := envInt("AA_SUBMITTER_CONCURRENCY", defaultWorkerConcurrency)
	shutdownTimeout := time.Duration(envInt("AA_SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second

	region := strings.TrimSpace(cfg.AWSRegion)
	if region == "" {
		region = defaultRegion
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	var sqsClient sqsAPI = sqs.NewFromConfig(awsCfg)

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	sem := make(chan struct{}, max(1, concurrency))
	var wg sync.WaitGroup

	log.Printf("submitter started queue=%s concurrency=%d visibility=%ds", queueURL, concurrency, visibilitySeconds)

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		resp, err := sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   int32(visibilitySeconds),
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			log.Printf("receive message: %v", err)
			continue
		}

		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				handleMessage(ctx, app, sqsClient, queueURL, m)
			}(msg)
		}
	}

	log.Printf("shutdown requested, waiting up to %s for in-flight submissions", shutdownTimeout)
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		log.Printf("shutdown timeout reached; exiting with in-flight submissions")
	}
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func handleMessage(ctx context.Context, app *bootstrap.App, client sqsAPI, queueURL string, msg sqstypes.Message) {
	body := aws.ToString(msg.Body)
	if strings.TrimSpace(body) == "" {
		telemetry.Error("submitter.empty_body", baseFields(msg, queue.Message{}))
		deleteMessage(ctx, client, queueURL, msg, queue.Message{})
		return
	}

	decoded, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		fields := baseFields(msg, queue.Message{})
		fields["error"] = err.Error()
		telemetry.Error("submitter.decode_failed", fields)
		deleteMessage(ctx, client, queueURL, msg, queue.Message{})
		return
	}
	if decoded.QueueEntryID == "" || decoded.UserID == "" {
		telemetry.Error("submitter.missing_ids", baseFields(msg, decoded))
		deleteMessage(ctx, client, queueURL, msg, decoded)
		return
	}

	telemetry.Info("submitter.received", baseFields(msg, decoded))

	entry, err := app.AutoApplyService.MarkSubmitted(ctx, decoded.UserID, decoded.QueueEntryID)
	switch {
	case err == nil:
		if deleteMessage(ctx, client, queueURL, msg, decoded) {
			fields := baseFields(msg, decoded)
			fields["statusTransition"] = string(autoapply.StatusPending) + "->" + string(entry.Status)
			telemetry.Info("submitter.completed", fields)
			metrics.IncSubmissionsCompleted()
		}
	case errors.Is(err, autoapply.ErrNotFound), errors.Is(err, autoapply.ErrInvalidTransition):
		// Cancelled, already submitted, or gone. Nothing left to do with
		// this message.
		fields := baseFields(msg, decoded)
		fields["error"] = err.Error()
		telemetry.Info("submitter.dropped", fields)
		deleteMessage(ctx, client, queueURL, msg, decoded)
	default:
		fields := baseFields(msg, decoded)
		fields["error"] = err.Error()
		if receiveCount(msg) >= maxReceiveCount {
			telemetry.Error("submitter.giving_up", fields)
			if _, ferr := app.AutoApplyService.MarkFailed(ctx, decoded.UserID, decoded.QueueEntryID, err.Error()); ferr != nil {
				fields["mark_failed_error"] = ferr.Error()
			}
			metrics.IncSubmissionsFailed()
			deleteMessage(ctx, client, queueURL, msg, decoded)
			return
		}
		// Leave the message for redelivery.
		telemetry.Error("submitter.retrying", fields)
	}
}

func deleteMessage(ctx context.Context, client sqsAPI, queueURL string, msg sqstypes.Message, decoded queue.Message) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields := baseFields(msg, decoded)
		fields["error"] = "missing receipt handle"
		telemetry.Error("submitter.delete_failed", fields)
		return false
	}
	if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields := baseFields(msg, decoded)
		fields["error"] = err.Error()
		telemetry.Error("submitter.delete_failed", fields)
		return false
	}
	return true
}

func baseFields(msg sqstypes.Message, decoded queue.Message) map[string]any {
	fields := map[string]any{
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
	if decoded.QueueEntryID != "" {
		fields["queue_entry_id"] = decoded.QueueEntryID
	}
	if decoded.JobID != "" {
		fields["job_id"] = decoded.JobID
	}
	if decoded.RequestID != "" {
		fields["request_id"] = decoded.RequestID
	}
	return fields
}

func receiveCount(msg sqstypes.Message) int {
	if msg.Attributes == nil {
		return 0
	}
	raw := msg.Attributes["ApproximateReceiveCount"]
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
