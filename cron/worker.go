package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"innkeeper/config"
	"innkeeper/services/catalog"
	"innkeeper/services/tasks"
	"innkeeper/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt is the asynq connection for the task queue database.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	}
}

// NewMux routes flag tasks to the catalog.
func NewMux(cat catalog.Service) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeFlagRepair, handleFlagRepair(cat))
	mux.HandleFunc(tasks.TypeFlagRefresh, handleFlagRefresh(cat))
	return mux
}

// InitFlagWorker runs the flag repair worker and the periodic refresh
// scheduler in the background. The returned func stops both.
func InitFlagWorker(cat catalog.Service) (func(), error) {
	logger := utils.GetLogger()
	redisOpts := RedisOpt()

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	entryID, err := scheduler.Register(config.AppConfig.FlagRefreshSpec, tasks.NewFlagRefreshTask())
	if err != nil {
		return nil, fmt.Errorf("register flag refresh %q: %w", config.AppConfig.FlagRefreshSpec, err)
	}
	logger.Info("Registered flag refresh", zap.String("spec", config.AppConfig.FlagRefreshSpec), zap.String("entryId", entryID))

	mux := NewMux(cat)
	go func() {
		logger.Info("Starting flag worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				break
			}
			logger.Error("Flag worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Flag worker giving up; flags are corrected on the next restart")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("start flag scheduler: %w", err)
	}

	return func() {
		scheduler.Shutdown()
		srv.Shutdown()
	}, nil
}

func handleFlagRepair(cat catalog.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p tasks.FlagRepairPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid flag repair payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		available, err := cat.RefreshFlag(ctx, p.RoomID)
		if err != nil {
			logger.Warn("Flag repair failed", zap.Int64("roomId", p.RoomID), zap.Error(err))
			return err
		}
		logger.Info("Flag repaired", zap.Int64("roomId", p.RoomID), zap.Bool("available", available))
		return nil
	}
}

func handleFlagRefresh(cat catalog.Service) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		n, err := cat.RefreshAllFlags(ctx)
		if err != nil {
			return err
		}
		utils.GetLogger().Info("Availability flags refreshed", zap.Int("rooms", n))
		return nil
	}
}
