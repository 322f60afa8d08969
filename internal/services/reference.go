package services

import (
	"context"

	"go.uber.org/zap"

	"load-tracker/internal/dto"
	"load-tracker/internal/repositories"
)

// ReferenceService serves the read-only lookup lists edited by administrators.
type ReferenceService struct {
	deliveryStatusRepository   repositories.StatusRepositoryInterface
	completionStatusRepository repositories.StatusRepositoryInterface
	groupRepository            repositories.NotificationGroupRepositoryInterface
	logger                     *zap.Logger
}

func NewReferenceService(
	deliveryStatusRepository repositories.StatusRepositoryInterface,
	completionStatusRepository repositories.StatusRepositoryInterface,
	groupRepository repositories.NotificationGroupRepositoryInterface,
	logger *zap.Logger,
) *ReferenceService {
	return &ReferenceService{
		deliveryStatusRepository:   deliveryStatusRepository,
		completionStatusRepository: completionStatusRepository,
		groupRepository:            groupRepository,
		logger:                     logger,
	}
}

func (s *ReferenceService) DeliveryStatuses(ctx context.Context) ([]dto.StatusDTO, error) {
	return listStatuses(ctx, s.deliveryStatusRepository)
}

func (s *ReferenceService) CompletionStatuses(ctx context.Context) ([]dto.StatusDTO, error) {
	return listStatuses(ctx, s.completionStatusRepository)
}

func (s *ReferenceService) NotificationGroups(ctx context.Context) ([]dto.NotificationGroupDTO, error) {
	groups, err := s.groupRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificationGroupDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupToDTO(g))
	}
	return out, nil
}

func listStatuses(ctx context.Context, repo repositories.StatusRepositoryInterface) ([]dto.StatusDTO, error) {
	statuses, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StatusDTO, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, statusToDTO(st))
	}
	return out, nil
}
