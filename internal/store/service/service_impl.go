package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	storedomain "github.com/smallbiznis/shipguard/internal/store/domain"
	"github.com/smallbiznis/shipguard/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	storerepo    repository.Repository[storedomain.Store]
	settingsrepo repository.Repository[storedomain.StoreSettings]
}

func NewService(p ServiceParam) storedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("store.service"),

		storerepo:    repository.ProvideStore[storedomain.Store](p.DB),
		settingsrepo: repository.ProvideStore[storedomain.StoreSettings](p.DB),
	}
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*storedomain.Store, error) {
	store, err := s.storerepo.FindOne(ctx, &storedomain.Store{ID: id})
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, storedomain.ErrStoreNotFound
	}
	return store, nil
}

func (s *Service) ListEligible(ctx context.Context) ([]*storedomain.Store, error) {
	stores, err := s.storerepo.Find(ctx,
		&storedomain.Store{SubscriptionStatus: storedomain.SubscriptionStatusActive},
		repository.WithCondition("access_token <> ''"),
		repository.WithOrder("id"),
	)
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (s *Service) ProtectionHandle(ctx context.Context, storeID snowflake.ID) (string, error) {
	settings, err := s.settingsrepo.FindOne(ctx, &storedomain.StoreSettings{StoreID: storeID})
	if err != nil {
		return "", err
	}
	if settings == nil || settings.ProtectionHandle == nil {
		return storedomain.DefaultProtectionHandle, nil
	}
	handle := strings.TrimSpace(*settings.ProtectionHandle)
	if handle == "" {
		return storedomain.DefaultProtectionHandle, nil
	}
	return handle, nil
}
