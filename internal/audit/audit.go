// Package audit holds the audit and notification recorders handed to the
// workflow service.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"

	"eventhub/models"
)

// Recorder matches workflow.AuditRecorder.
type Recorder interface {
	Record(ctx context.Context, rec models.AuditRecord) error
}

// StreamAdder is the part of a redis client RedisRecorder needs.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisRecorder publishes audit records to a Redis stream so notifiers can
// consume them.
type RedisRecorder struct {
	client StreamAdder
	stream string
	maxLen int64
}

func NewRedisRecorder(client StreamAdder, stream string, maxLen int64) *RedisRecorder {
	return &RedisRecorder{client: client, stream: stream, maxLen: maxLen}
}

func (r *RedisRecorder) Record(ctx context.Context, rec models.AuditRecord) error {
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return errors.Wrap(err, "marshal audit details")
	}
	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{
			"action":        string(rec.Action),
			"performed_by":  rec.PerformedBy.String(),
			"target_entity": rec.TargetEntity,
			"target_id":     rec.TargetID.String(),
			"details":       string(details),
			"created_at":    rec.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}
	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return errors.Wrapf(err, "xadd %s", r.stream)
	}
	return nil
}

// LogRecorder writes audit records to a structured logger.
type LogRecorder struct {
	logger *slog.Logger
}

func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

func (l *LogRecorder) Record(ctx context.Context, rec models.AuditRecord) error {
	l.logger.InfoContext(ctx, "audit",
		slog.String("action", string(rec.Action)),
		slog.String("performed_by", rec.PerformedBy.String()),
		slog.String("target_entity", rec.TargetEntity),
		slog.String("target_id", rec.TargetID.String()),
		slog.Any("details", rec.Details))
	return nil
}

// Multi fans a record out to every recorder and joins their errors.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, rec models.AuditRecord) error {
	var err error
	for _, r := range m {
		err = multierr.Append(err, r.Record(ctx, rec))
	}
	return err
}
