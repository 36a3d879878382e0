package setup

import (
	"context"
	"fmt"

	"github.com/itchan-dev/anonboard/backend/internal/handler"
	"github.com/itchan-dev/anonboard/backend/internal/service"
	"github.com/itchan-dev/anonboard/backend/internal/storage/memory"
	"github.com/itchan-dev/anonboard/backend/internal/storage/pg"
	"github.com/itchan-dev/anonboard/backend/internal/utils"
	"github.com/itchan-dev/anonboard/backend/internal/utils/password"
	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/itchan-dev/anonboard/shared/jwt"
	"github.com/itchan-dev/anonboard/shared/logger"
	mw "github.com/itchan-dev/anonboard/shared/middleware"
)

// Storage is what the rest of the backend needs from a storage backend.
type Storage interface {
	service.ThreadStorage
	Ping(ctx context.Context) error
	Cleanup() error
}

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Storage        Storage
	Handler        *handler.Handler
	AuthMiddleware *mw.Auth
	Jwt            jwt.JwtService
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	hasher := password.New(cfg.Public.BcryptCost, cfg.Public.MaxHashers)
	thread := service.NewThread(storage, hasher, utils.New())
	h := handler.New(thread, cfg, storage)

	jwtService := jwt.New(cfg.JwtKey(), cfg.OperatorTTL())

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Handler:        h,
		AuthMiddleware: mw.NewAuth(jwtService),
		Jwt:            jwtService,
	}, nil
}

func newStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Public.Storage {
	case config.StoragePostgres:
		s, err := pg.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorageMemory:
		logger.Log.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Public.Storage)
	}
}
