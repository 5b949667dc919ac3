package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeFlagRepair  = "room:flag:repair"
	TypeFlagRefresh = "room:flag:refresh"
)

// FlagRepairPayload names the room whose availability hint must be recomputed.
type FlagRepairPayload struct {
	RoomID int64 `json:"roomId"`
}

func NewFlagRepairTask(roomID int64) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(FlagRepairPayload{RoomID: roomID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeFlagRepair, b)
	opts := []asynq.Option{
		asynq.ProcessIn(5 * time.Second),
		asynq.MaxRetry(10),
		asynq.Unique(time.Minute),
	}
	return task, opts, nil
}

// NewFlagRefreshTask recomputes every room's hint; registered on a cron spec.
func NewFlagRefreshTask() *asynq.Task {
	return asynq.NewTask(TypeFlagRefresh, nil, asynq.MaxRetry(1))
}

// Enqueuer schedules flag repairs through asynq.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) ScheduleFlagRepair(ctx context.Context, roomID int64) error {
	task, opts, err := NewFlagRepairTask(roomID)
	if err != nil {
		return err
	}
	if _, err := e.client.EnqueueContext(ctx, task, opts...); err != nil {
		// A repair for this room is already pending.
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return nil
		}
		return fmt.Errorf("enqueue flag repair for room %d: %w", roomID, err)
	}
	return nil
}
