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

	"diagnostics-backend/internal/bootstrap"
	"diagnostics-backend/internal/queue"
	"diagnostics-backend/internal/shared/config"
	"diagnostics-backend/internal/shared/metrics"
	"diagnostics-backend/internal/shared/telemetry"
	"diagnostics-backend/internal/workerproc"
)

const (
	sqsRegion                 = "us-east-1"
	defaultVisibilitySeconds  = 300
	defaultWorkerConcurrency  = 4
	defaultShutdownTimeoutSec = 30
	snapshotInterval          = time.Hour
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	go snapshotLoop(ctx, app)

	queueURL := strings.TrimSpace(cfg.SQSQueueURL)
	if queueURL == "" {
		log.Printf("worker started in memory-queue mode")
		runMemory(ctx, app)
		return
	}

	runSQS(ctx, app, queueURL)
}

// snapshotLoop periodically folds the day's analytics events into snapshots.
func snapshotLoop(ctx context.Context, app *bootstrap.App) {
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			day := time.Now().UTC()
			count, err := app.AnalyticsService.BuildDailySnapshots(ctx, day)
			if err != nil {
				telemetry.Error("worker.snapshots.failed", map[string]any{"error": err.Error()})
				continue
			}
			telemetry.Info("worker.snapshots.built", map[string]any{
				"day":        day.Format(time.DateOnly),
				"categories": count,
			})
		}
	}
}

// runMemory drains the in-process queue. Used in dev where no SQS queue is
// configured.
func runMemory(ctx context.Context, app *bootstrap.App) {
	mem, ok := app.Queue.(*queue.MemoryClient)
	if !ok {
		log.Fatal("memory-queue mode requires a memory queue client")
	}

	for {
		msg, err := mem.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			log.Printf("receive message: %v", err)
			continue
		}
		metrics.IncDispatchJobsReceived()
		if err := app.Dispatcher.Handle(ctx, msg); err != nil {
			telemetry.Error("worker.dispatch.failed", map[string]any{
				"notification_id": msg.NotificationID,
				"request_id":      msg.RequestID,
				"error":           err.Error(),
			})
			metrics.IncDispatchJobsFailed()
			continue
		}
		metrics.IncDispatchJobsCompleted()
	}
}

func runSQS(ctx context.Context, app *bootstrap.App, queueURL string) {
	visibilitySeconds := envInt("DIAG_SQS_VISIBILITY_TIMEOUT_SECONDS", defaultVisibilitySeconds)
	concurrency := envInt("DIAG_WORKER_CONCURRENCY", defaultWorkerConcurrency)
	shutdownTimeout := time.Duration(envInt("DIAG_SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second

	region := strings.TrimSpace(os.Getenv("AWS_REGION"))
	if region == "" {
		region = sqsRegion
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	var sqsClient sqsAPI = sqs.NewFromConfig(awsCfg)

	sem := make(chan struct{}, max(1, concurrency))
	var wg sync.WaitGroup

	log.Printf("worker started queue=%s concurrency=%d visibility=%ds", queueURL, concurrency, visibilitySeconds)

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
			metrics.IncDispatchJobsReceived()
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				handleMessage(ctx, app, sqsClient, queueURL, m)
			}(msg)
		}
	}

	log.Printf("shutdown requested, waiting up to %s for in-flight jobs", shutdownTimeout)
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		log.Printf("shutdown timeout reached; exiting with in-flight jobs")
	}
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func handleMessage(ctx context.Context, app *bootstrap.App, client sqsAPI, queueURL string, msg sqstypes.Message) {
	body := aws.ToString(msg.Body)
	if strings.TrimSpace(body) == "" {
		fields := baseFields(msg, "", "")
		fields["body_len"] = 0
		telemetry.Error("worker.dispatch.empty_body", fields)
		if deleteMessage(ctx, client, queueURL, msg, "", "") {
			metrics.IncDispatchJobsDeletedUnrecoverable()
		}
		return
	}

	decoded, meta, err := workerproc.ParseMessage(body)
	if err != nil {
		switch e := err.(type) {
		case workerproc.ErrDecode:
			fields := baseFields(msg, "", "")
			fields["body_len"] = meta.BodyLen
			fields["body_sha256"] = meta.BodySHA
			fields["error"] = e.Err.Error()
			telemetry.Error("worker.dispatch.decode_failed", fields)
			if deleteMessage(ctx, client, queueURL, msg, "", "") {
				metrics.IncDispatchJobsDeletedUnrecoverable()
			}
			return
		case workerproc.ErrMissingNotificationID:
			fields := baseFields(msg, "", e.RequestID)
			fields["body_len"] = meta.BodyLen
			fields["body_sha256"] = meta.BodySHA
			telemetry.Error("worker.dispatch.missing_id", fields)
			if deleteMessage(ctx, client, queueURL, msg, "", e.RequestID) {
				metrics.IncDispatchJobsDeletedUnrecoverable()
			}
			return
		default:
			fields := baseFields(msg, "", "")
			fields["body_len"] = meta.BodyLen
			if meta.BodySHA != "" {
				fields["body_sha256"] = meta.BodySHA
			}
			fields["error"] = err.Error()
			telemetry.Error("worker.dispatch.decode_failed", fields)
			if deleteMessage(ctx, client, queueURL, msg, "", "") {
				metrics.IncDispatchJobsDeletedUnrecoverable()
			}
			return
		}
	}

	telemetry.Info("worker.dispatch.received", baseFields(msg, decoded.NotificationID, decoded.RequestID))

	ctxWithParsed := workerproc.WithParsedMessage(ctx, decoded)
	if err := workerproc.HandleMessage(ctxWithParsed, app, body); err != nil {
		if procErr, ok := err.(workerproc.ErrProcess); ok {
			fields := baseFields(msg, procErr.NotificationID, procErr.RequestID)
			fields["error"] = procErr.Err.Error()
			telemetry.Error("worker.dispatch.failed", fields)
			metrics.IncDispatchJobsFailed()
			return
		}

		fields := baseFields(msg, decoded.NotificationID, decoded.RequestID)
		fields["error"] = err.Error()
		telemetry.Error("worker.dispatch.failed", fields)
		metrics.IncDispatchJobsFailed()
		return
	}

	if deleteMessage(ctx, client, queueURL, msg, decoded.NotificationID, decoded.RequestID) {
		telemetry.Info("worker.dispatch.completed", baseFields(msg, decoded.NotificationID, decoded.RequestID))
		metrics.IncDispatchJobsCompleted()
	}
}

func deleteMessage(ctx context.Context, client sqsAPI, queueURL string, msg sqstypes.Message, notificationID, requestID string) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields := baseFields(msg, notificationID, requestID)
		fields["error"] = "missing receipt handle"
		telemetry.Error("worker.dispatch.delete_failed", fields)
		return false
	}
	if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields := baseFields(msg, notificationID, requestID)
		fields["error"] = err.Error()
		telemetry.Error("worker.dispatch.delete_failed", fields)
		return false
	}
	return true
}

func baseFields(msg sqstypes.Message, notificationID, requestID string) map[string]any {
	fields := map[string]any{
		"notification_id": notificationID,
		"sqs_message_id":  aws.ToString(msg.MessageId),
		"receive_count":   receiveCount(msg),
	}
	if strings.TrimSpace(requestID) != "" {
		fields["request_id"] = requestID
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
