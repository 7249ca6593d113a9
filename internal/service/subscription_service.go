package service

import (
	"context"
	"fmt"

	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/internal/repository"
	"go-marketplace-ws/internal/ws"
	"go-marketplace-ws/pkg/apperror"

	"gorm.io/gorm"
)

type SubscriptionService interface {
	// Channels resolves which relay channels actor may listen on. An empty
	// request means "everything I am entitled to".
	Channels(ctx context.Context, actor model.Actor, requested []string) ([]string, error)
}

type subscriptionService struct {
	catalogRepo repository.CatalogRepository
	db          *gorm.DB
}

func NewSubscriptionService(cRepo repository.CatalogRepository, db *gorm.DB) SubscriptionService {
	return &subscriptionService{catalogRepo: cRepo, db: db}
}

func (s *subscriptionService) Channels(ctx context.Context, actor model.Actor, requested []string) ([]string, error) {
	stores, err := s.catalogRepo.FindStoresByOwner(s.db.WithContext(ctx), actor.ID)
	if err != nil {
		return nil, err
	}

	own := []string{ws.UserChannel(actor.ID)}
	for _, store := range stores {
		own = append(own, ws.StoreChannel(store.ID))
	}
	if len(requested) == 0 {
		return own, nil
	}
	if actor.IsAdmin() {
		return requested, nil
	}

	allowed := make(map[string]bool, len(own))
	for _, ch := range own {
		allowed[ch] = true
	}
	for _, ch := range requested {
		if !allowed[ch] {
			return nil, apperror.WithMetadata(apperror.KindForbidden,
				fmt.Sprintf("not allowed to subscribe to %q", ch),
				map[string]any{"channel": ch})
		}
	}
	return requested, nil
}
