package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/repurpose-api/internal/repository"
	"github.com/maheshrc27/repurpose-api/internal/service"
	"github.com/rs/zerolog/log"
)

func (q *Queue) HandleGenerateSessionTask(ctx context.Context, task *asynq.Task) error {
	var payload GenerateSessionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}

	session, err := q.ss.Generate(ctx, service.GenerateInput{SessionID: payload.SessionID})
	if err != nil {
		log.Error().Err(err).Int64("session_id", payload.SessionID).Msg("background generation failed")
		if errors.Is(err, repository.ErrSessionNotFound) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	log.Info().Int64("session_id", session.ID).Msg("background generation finished")
	return nil
}
