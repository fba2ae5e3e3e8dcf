package queue

import (
	"github.com/maheshrc27/repurpose-api/internal/service"
)

// Queue runs background session regeneration.
type Queue struct {
	ss service.SessionService
}

func NewQueue(ss service.SessionService) *Queue {
	return &Queue{ss: ss}
}

const TaskTypeGenerateSession = "session:generate"

type GenerateSessionPayload struct {
	SessionID int64 `json:"session_id"`
}
