package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gamehaqqs/gamehaqqs/internal/api"
	"github.com/gamehaqqs/gamehaqqs/internal/app"
	iauth "github.com/gamehaqqs/gamehaqqs/internal/auth"
	"github.com/gamehaqqs/gamehaqqs/internal/cache"
	"github.com/gamehaqqs/gamehaqqs/internal/database"
	"github.com/gamehaqqs/gamehaqqs/internal/monitoring/checks"
	"github.com/gamehaqqs/gamehaqqs/internal/notifications"
	"github.com/gamehaqqs/gamehaqqs/internal/scheduler"
	"github.com/gamehaqqs/gamehaqqs/internal/services"
	"github.com/gamehaqqs/gamehaqqs/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Hub       *notifications.Hub
	Services  *services.Container
	Scheduler *scheduler.Scheduler
	Router    *gin.Engine
}

// bootstrapRuntime opens storage, wires the gamification services and schedules leaderboard rebuilds.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	containerCfg := services.ContainerConfig{
		LeaderboardSize: cfg.Leaderboard.Size,
		PasswordCost:    cfg.Auth.PasswordCost(),
	}

	if cfg.Cache.Redis.Enabled {
		redisCfg := cfg.Cache.RedisClientConfig()
		if stack.Redis, err = cache.NewRedisClient(ctx, redisCfg); err != nil {
			log.Warn("redis unavailable; serving leaderboards from the database", zap.Error(err))
			stack.Redis = nil
		} else {
			leaderboardCache, cacheErr := cache.NewLeaderboardCache(stack.Redis, redisCfg)
			if cacheErr != nil {
				return nil, fmt.Errorf("initialise leaderboard cache: %w", cacheErr)
			}
			containerCfg.Cache = leaderboardCache
			log.Info("redis connected", zap.String("addr", redisCfg.Address))
		}
	}

	stack.Hub = notifications.NewHub()
	containerCfg.Publisher = stack.Hub

	stack.Services, err = services.NewContainer(stack.DB, containerCfg)
	if err != nil {
		return nil, fmt.Errorf("initialise services: %w", err)
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	stack.Scheduler, err = scheduler.New(stack.Services.Leaderboard, cfg.Leaderboard.SchedulesByPeriod())
	if err != nil {
		return nil, fmt.Errorf("configure leaderboard schedules: %w", err)
	}
	if cfg.Leaderboard.RebuildOnStart {
		if err := stack.Scheduler.RunOnce(ctx); err != nil {
			log.Warn("initial leaderboard rebuild incomplete", zap.Error(err))
		}
	}
	if err := stack.Scheduler.Start(); err != nil {
		return nil, fmt.Errorf("start leaderboard scheduler: %w", err)
	}

	var redisClient redis.UniversalClient
	if stack.Redis != nil {
		redisClient = stack.Redis
	}
	redisCheck := checks.Redis(redisClient, cfg.Cache.Redis.Enabled, cfg.Cache.Redis.Timeout)

	stack.Router, err = api.NewRouter(stack.DB, jwtSvc, cfg, stack.Services, stack.Hub, redisCheck)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown stops scheduled rebuilds and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Scheduler != nil {
		select {
		case <-s.Scheduler.Stop().Done():
		case <-ctx.Done():
			log.Warn("leaderboard rebuild still running at shutdown")
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		closeDatabase(db, logger.WithModule("database"))
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
