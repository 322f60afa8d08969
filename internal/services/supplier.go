package services

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"load-tracker/internal/dto"
	"load-tracker/internal/entities"
	"load-tracker/internal/repositories"
	"load-tracker/pkg/vista"
)

type SupplierService struct {
	supplierRepository repositories.SupplierRepositoryInterface
	views              *vista.Manager
	loadViews          *vista.Manager
	logger             *zap.Logger
}

func NewSupplierService(
	supplierRepository repositories.SupplierRepositoryInterface,
	views *vista.Manager,
	loadViews *vista.Manager,
	logger *zap.Logger,
) *SupplierService {
	return &SupplierService{
		supplierRepository: supplierRepository,
		views:              views,
		loadViews:          loadViews,
		logger:             logger,
	}
}

func (s *SupplierService) List(ctx context.Context, userID uint64, values url.Values) (*ViewList[dto.SupplierDTO], error) {
	page, err := resolveListPage(ctx, s.views, userID, values, s.logger)
	if err != nil {
		return nil, err
	}

	limit, offset := page.limitOffset()
	suppliers, total, err := s.supplierRepository.List(ctx, s.views.Fields(), page.result.Spec, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SupplierDTO, 0, len(suppliers))
	for _, sp := range suppliers {
		items = append(items, supplierToDTO(sp))
	}
	return newViewList(s.views, page, items, total), nil
}

func (s *SupplierService) Get(ctx context.Context, id uint64) (*dto.SupplierDTO, error) {
	sp, err := s.supplierRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := supplierToDTO(*sp)
	return &out, nil
}

func (s *SupplierService) Create(ctx context.Context, in dto.CreateSupplierDTO) (*dto.SupplierDTO, error) {
	sp, err := s.supplierRepository.Create(ctx, entities.Supplier{Name: in.Name, Details: in.Details})
	if err != nil {
		return nil, err
	}
	s.logger.Info("supplier created", zap.Uint64("supplierID", sp.ID))
	out := supplierToDTO(*sp)
	return &out, nil
}

func (s *SupplierService) Update(ctx context.Context, id uint64, in dto.UpdateSupplierDTO) (*dto.SupplierDTO, error) {
	sp, err := s.supplierRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		sp.Name = *in.Name
	}
	if in.Details != nil {
		sp.Details = *in.Details
	}
	updated, err := s.supplierRepository.Update(ctx, *sp)
	if err != nil {
		return nil, err
	}
	out := supplierToDTO(*updated)
	return &out, nil
}

func (s *SupplierService) Delete(ctx context.Context, id uint64) error {
	if err := s.supplierRepository.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("supplier deleted", zap.Uint64("supplierID", id))
	return nil
}

func (s *SupplierService) Close(ctx context.Context, id uint64) (*dto.CloseDTO, error) {
	sp, err := s.supplierRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CloseDTO{ID: sp.ID, Label: sp.Name}, nil
}

// LoadsFrom stashes a load query filtered to this supplier.
func (s *SupplierService) LoadsFrom(ctx context.Context, id uint64) (*dto.StashDTO, error) {
	if _, err := s.supplierRepository.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return stashRefFilter(ctx, s.loadViews, "supplier", id)
}
