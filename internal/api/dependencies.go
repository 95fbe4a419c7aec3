package api

import (
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"marathon-readiness/toolkit/internal/common"
	"marathon-readiness/toolkit/internal/config"
	"marathon-readiness/toolkit/internal/db/repositories"
	"marathon-readiness/toolkit/internal/metrics"
	"marathon-readiness/toolkit/internal/services"
	"marathon-readiness/toolkit/internal/workers"
)

type Repositories struct {
	State *repositories.StateRepository
	// Keys is nil when no raw-SQL keys database is configured; the API key
	// auth scheme is then disabled.
	Keys *repositories.KeysRepo
}

type Services struct {
	Cache     common.CacheInterface
	Tokens    *common.TokenService
	Flusher   *workers.StateFlusher
	Trendline *services.TrendlineService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
}

func InitDependencies(cfg config.Config, gormDB *gorm.DB, sqlxDB *sqlx.DB, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {

	repos := &Repositories{
		State: repositories.NewStateRepository(gormDB),
	}
	if sqlxDB != nil {
		repos.Keys = repositories.NewApiKeysRepo(sqlxDB)
	}

	var cacheSvc common.CacheInterface
	if cfg.UseRedisCache {
		redisSvc, err := common.NewRedisCacheService(cfg.RedisAddr(), cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		cacheSvc = redisSvc
	} else {
		// -1 is no expiry; state entries live until wiped
		cacheSvc = common.NewCacheService(-1, 10*time.Minute)
	}

	flusher := workers.NewStateFlusher(repos.State, metricsReg, cfg.FlushQuiet)
	localStore := services.NewLocalStateStore(cacheSvc)

	svcs := &Services{
		Cache:     cacheSvc,
		Tokens:    common.NewTokenService(cfg.TokenSecret, 30*24*time.Hour),
		Flusher:   flusher,
		Trendline: services.NewTrendlineService(localStore, repos.State, flusher, metricsReg),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
	}, nil
}
