package background

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"mealmart/internal/services"
)

// JobScheduler runs the periodic maintenance jobs.
type JobScheduler struct {
	scheduler          gocron.Scheduler
	leaderboardService services.LeaderboardServiceInterface
	logger             *zap.Logger
}

func NewJobScheduler(leaderboardService services.LeaderboardServiceInterface, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:          scheduler,
		leaderboardService: leaderboardService,
		logger:             logger,
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.refreshLeaderboard),
		gocron.WithName("leaderboard-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

func (js *JobScheduler) refreshLeaderboard() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := js.leaderboardService.Refresh(ctx); err != nil {
		js.logger.Warn("leaderboard refresh failed", zap.Error(err))
	}
}
