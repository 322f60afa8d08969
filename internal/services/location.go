package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"load-tracker/internal/dto"
	"load-tracker/internal/entities"
	"load-tracker/internal/repositories"
	apperrors "load-tracker/pkg/errors"
	"load-tracker/pkg/vista"
)

type LocationService struct {
	txManager          repositories.TxManagerInterface
	locationRepository repositories.LocationRepositoryInterface
	loadRepository     repositories.LoadRepositoryInterface
	views              *vista.Manager
	loadViews          *vista.Manager
	logger             *zap.Logger
}

func NewLocationService(
	txManager repositories.TxManagerInterface,
	locationRepository repositories.LocationRepositoryInterface,
	loadRepository repositories.LoadRepositoryInterface,
	views *vista.Manager,
	loadViews *vista.Manager,
	logger *zap.Logger,
) *LocationService {
	return &LocationService{
		txManager:          txManager,
		locationRepository: locationRepository,
		loadRepository:     loadRepository,
		views:              views,
		loadViews:          loadViews,
		logger:             logger,
	}
}

func (s *LocationService) List(ctx context.Context, userID uint64, values url.Values) (*ViewList[dto.LocationDTO], error) {
	page, err := resolveListPage(ctx, s.views, userID, values, s.logger)
	if err != nil {
		return nil, err
	}

	limit, offset := page.limitOffset()
	locations, total, err := s.locationRepository.List(ctx, s.views.Fields(), page.result.Spec, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]dto.LocationDTO, 0, len(locations))
	for _, l := range locations {
		items = append(items, locationToDTO(l))
	}
	return newViewList(s.views, page, items, total), nil
}

func (s *LocationService) Get(ctx context.Context, id uint64) (*dto.LocationDTO, error) {
	loc, err := s.locationRepository.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	out := locationToDTO(*loc)
	return &out, nil
}

func (s *LocationService) Create(ctx context.Context, in dto.CreateLocationDTO) (*dto.LocationDTO, error) {
	loc, err := s.locationRepository.Create(ctx, entities.Location{Name: in.Name, IsDefault: in.IsDefault})
	if err != nil {
		return nil, err
	}
	s.logger.Info("location created", zap.Uint64("locationID", loc.ID))
	out := locationToDTO(*loc)
	return &out, nil
}

func (s *LocationService) Update(ctx context.Context, id uint64, in dto.UpdateLocationDTO) (*dto.LocationDTO, error) {
	loc, err := s.locationRepository.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		loc.Name = *in.Name
	}
	if in.IsDefault != nil {
		loc.IsDefault = *in.IsDefault
	}
	updated, err := s.locationRepository.Update(ctx, *loc)
	if err != nil {
		return nil, err
	}
	out := locationToDTO(*updated)
	return &out, nil
}

// Delete removes a location; its loads keep existing with no location.
func (s *LocationService) Delete(ctx context.Context, id uint64) error {
	if err := s.locationRepository.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.logger.Info("location deleted", zap.Uint64("locationID", id))
	return nil
}

func (s *LocationService) Close(ctx context.Context, id uint64) (*dto.CloseDTO, error) {
	loc, err := s.locationRepository.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return &dto.CloseDTO{ID: loc.ID, Label: loc.Name}, nil
}

// Merge moves every load of sourceID to targetID and deletes sourceID. Both
// steps commit together or not at all.
func (s *LocationService) Merge(ctx context.Context, sourceID, targetID uint64) (*dto.MergeResultDTO, error) {
	if sourceID == targetID {
		return nil, apperrors.NewInvalidInputError("a location cannot be merged into itself")
	}

	var moved int64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.locationRepository.FindByID(ctx, tx, sourceID); err != nil {
			return fmt.Errorf("merge source %d: %w", sourceID, err)
		}
		if _, err := s.locationRepository.FindByID(ctx, tx, targetID); err != nil {
			return fmt.Errorf("merge target %d: %w", targetID, err)
		}

		n, err := s.loadRepository.ReassignLocation(ctx, tx, sourceID, targetID)
		if err != nil {
			return err
		}
		moved = n
		return s.locationRepository.Delete(ctx, tx, sourceID)
	})
	if err != nil {
		var constraint *apperrors.ConstraintError
		if errors.As(err, &constraint) {
			s.logger.Warn("location merge rejected by constraint",
				zap.Uint64("from", sourceID), zap.Uint64("to", targetID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("locations merged",
		zap.Uint64("from", sourceID), zap.Uint64("to", targetID), zap.Int64("loads", moved))
	return &dto.MergeResultDTO{SourceID: sourceID, TargetID: targetID, ReassignedIDs: moved}, nil
}

// LoadsAt stashes a load query filtered to this location and returns the
// token the load list consumes once.
func (s *LocationService) LoadsAt(ctx context.Context, id uint64) (*dto.StashDTO, error) {
	if _, err := s.locationRepository.FindByID(ctx, nil, id); err != nil {
		return nil, err
	}
	return stashRefFilter(ctx, s.loadViews, "location", id)
}

func stashRefFilter(ctx context.Context, m *vista.Manager, field string, id uint64) (*dto.StashDTO, error) {
	stash := m.Stash()
	if stash == nil {
		return nil, fmt.Errorf("query stash is not configured")
	}
	token, err := stash.Put(ctx, url.Values{
		vista.ParamFilterField + "0": {field},
		vista.ParamFilterOp + "0":    {string(vista.OpExact)},
		vista.ParamFilterValue + "0": {strconv.FormatUint(id, 10)},
	})
	if err != nil {
		return nil, err
	}
	return &dto.StashDTO{
		Token:       token,
		RedirectURL: "/api/loads?" + url.Values{vista.ParamStash: {token}}.Encode(),
	}, nil
}
