package audit

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"eventhub/models"
)

type fakeStream struct {
	added []*redis.XAddArgs
	err   error
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.added = append(f.added, a)
	return redis.NewStringResult("1700000000000-0", f.err)
}

type failing struct{ err error }

func (f failing) Record(context.Context, models.AuditRecord) error { return f.err }

func sample() models.AuditRecord {
	return models.AuditRecord{
		Action:       models.ActionSponsorReview,
		PerformedBy:  uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		TargetEntity: "sponsor",
		TargetID:     uuid.MustParse("44444444-4444-4444-4444-444444444444"),
		Details:      map[string]any{"status": "approved"},
		CreatedAt:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestRedisRecorder(t *testing.T) {
	fake := &fakeStream{}
	r := NewRedisRecorder(fake, "eventhub:audit", 1000)

	require.NoError(t, r.Record(context.Background(), sample()))
	require.Len(t, fake.added, 1)
	args := fake.added[0]
	assert.Equal(t, "eventhub:audit", args.Stream)
	assert.Equal(t, int64(1000), args.MaxLen)
	assert.True(t, args.Approx)
	values := args.Values.(map[string]any)
	assert.Equal(t, "SPONSOR_REVIEW", values["action"])
	assert.Equal(t, "44444444-4444-4444-4444-444444444444", values["target_id"])
	assert.Equal(t, `{"status":"approved"}`, values["details"])
	assert.Equal(t, "2026-03-01T09:00:00.000Z", values["created_at"])
}

func TestRedisRecorderError(t *testing.T) {
	fake := &fakeStream{err: errors.New("connection refused")}
	err := NewRedisRecorder(fake, "s", 0).Record(context.Background(), sample())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xadd s")
	assert.Zero(t, fake.added[0].MaxLen)
}

func TestLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogRecorder(slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, r.Record(context.Background(), sample()))
	assert.Contains(t, buf.String(), `"action":"SPONSOR_REVIEW"`)
	assert.Contains(t, buf.String(), `"target_entity":"sponsor"`)
}

func TestMultiJoinsErrors(t *testing.T) {
	fake := &fakeStream{}
	m := Multi{
		failing{errors.New("db down")},
		NewRedisRecorder(fake, "s", 0),
		failing{errors.New("disk full")},
	}
	err := m.Record(context.Background(), sample())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Len(t, fake.added, 1, "later recorders still run")

	require.NoError(t, Multi{NewRedisRecorder(fake, "s", 0)}.Record(context.Background(), sample()))
}
