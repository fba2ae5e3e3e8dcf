package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/repurpose-api/internal/service"
	"github.com/rs/zerolog/log"
)

// Enqueuer schedules background work. Handlers depend on this instead of
// the asynq client so the queue can be disabled.
type Enqueuer interface {
	EnqueueGenerate(ctx context.Context, sessionID int64) error
}

var ErrQueueDisabled = errors.New("background queue is not configured")

type asynqEnqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) Enqueuer {
	return &asynqEnqueuer{client: client}
}

// EnqueueGenerate never retries and refuses a second task for a session
// that already has one pending.
func (e *asynqEnqueuer) EnqueueGenerate(ctx context.Context, sessionID int64) error {
	payload, err := json.Marshal(GenerateSessionPayload{SessionID: sessionID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeGenerateSession, payload)
	_, err = e.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(0),
		asynq.TaskID(fmt.Sprintf("generate:%d", sessionID)),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return service.ErrGenerationInProgress
	}
	if err != nil {
		return err
	}

	log.Info().Int64("session_id", sessionID).Msg("generation task queued")
	return nil
}

// Disabled rejects every task.
type Disabled struct{}

func (Disabled) EnqueueGenerate(context.Context, int64) error {
	return ErrQueueDisabled
}
