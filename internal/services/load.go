package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"load-tracker/config"
	"load-tracker/internal/dto"
	"load-tracker/internal/entities"
	"load-tracker/internal/repositories"
	apperrors "load-tracker/pkg/errors"
	"load-tracker/pkg/filestorage"
	"load-tracker/pkg/vista"
)

const (
	photoUploadContext = "load_photo"
	maxExportRows      = 10000
)

// PhotoUpload is an already validated image attached to a load form.
type PhotoUpload struct {
	Reader   io.Reader
	Filename string
}

type LoadService struct {
	txManager                  repositories.TxManagerInterface
	loadRepository             repositories.LoadRepositoryInterface
	historyRepository          repositories.LoadHistoryRepositoryInterface
	locationRepository         repositories.LocationRepositoryInterface
	deliveryStatusRepository   repositories.StatusRepositoryInterface
	completionStatusRepository repositories.StatusRepositoryInterface
	groupRepository            repositories.NotificationGroupRepositoryInterface
	notificationService        *NotificationService
	fileStorage                filestorage.FileStorageInterface
	views                      *vista.Manager
	logger                     *zap.Logger
}

func NewLoadService(
	txManager repositories.TxManagerInterface,
	loadRepository repositories.LoadRepositoryInterface,
	historyRepository repositories.LoadHistoryRepositoryInterface,
	locationRepository repositories.LocationRepositoryInterface,
	deliveryStatusRepository repositories.StatusRepositoryInterface,
	completionStatusRepository repositories.StatusRepositoryInterface,
	groupRepository repositories.NotificationGroupRepositoryInterface,
	notificationService *NotificationService,
	fileStorage filestorage.FileStorageInterface,
	views *vista.Manager,
	logger *zap.Logger,
) *LoadService {
	return &LoadService{
		txManager:                  txManager,
		loadRepository:             loadRepository,
		historyRepository:          historyRepository,
		locationRepository:         locationRepository,
		deliveryStatusRepository:   deliveryStatusRepository,
		completionStatusRepository: completionStatusRepository,
		groupRepository:            groupRepository,
		notificationService:        notificationService,
		fileStorage:                fileStorage,
		views:                      views,
		logger:                     logger,
	}
}

func (s *LoadService) List(ctx context.Context, userID uint64, values url.Values) (*ViewList[dto.LoadDTO], error) {
	page, err := resolveListPage(ctx, s.views, userID, values, s.logger)
	if err != nil {
		return nil, err
	}

	limit, offset := page.limitOffset()
	loads, total, err := s.loadRepository.List(ctx, s.views.Fields(), page.result.Spec, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]dto.LoadDTO, 0, len(loads))
	for _, l := range loads {
		items = append(items, loadToDTO(l))
	}
	return newViewList(s.views, page, items, total), nil
}

// Export returns every load matched by the user's current view, capped at
// maxExportRows, together with the columns that view shows.
func (s *LoadService) Export(ctx context.Context, userID uint64) ([]dto.LoadDTO, vista.Context, error) {
	result := s.views.RetrieveLatest(ctx, userID)
	loads, _, err := s.loadRepository.List(ctx, s.views.Fields(), result.Spec, maxExportRows, 0)
	if err != nil {
		return nil, vista.Context{}, err
	}
	items := make([]dto.LoadDTO, 0, len(loads))
	for _, l := range loads {
		items = append(items, loadToDTO(l))
	}
	return items, s.views.Describe(result.Spec), nil
}

func (s *LoadService) Get(ctx context.Context, id uint64) (*dto.LoadDetailDTO, error) {
	load, err := s.loadRepository.FindByID(ctx, nil, id, false)
	if err != nil {
		return nil, err
	}
	histories, err := s.historyRepository.FindByLoadID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &dto.LoadDetailDTO{LoadDTO: loadToDTO(*load), Histories: make([]dto.LoadHistoryDTO, 0, len(histories))}
	for _, h := range histories {
		out.Histories = append(out.Histories, historyToDTO(h))
	}
	return out, nil
}

func (s *LoadService) Close(ctx context.Context, id uint64) (*dto.CloseDTO, error) {
	load, err := s.loadRepository.FindByID(ctx, nil, id, false)
	if err != nil {
		return nil, err
	}
	return &dto.CloseDTO{ID: load.ID, Label: load.PONumber + " - " + load.JobName}, nil
}

func (s *LoadService) Create(ctx context.Context, userID uint64, in dto.CreateLoadDTO, photo *PhotoUpload) (*dto.LoadSavedDTO, error) {
	load := entities.Load{
		JobName:            in.JobName,
		PONumber:           in.PONumber,
		SupplierID:         in.SupplierID.Ptr(),
		SPONumber:          in.SPONumber,
		Description:        in.Description,
		Notes:              in.Notes,
		LocationID:         in.LocationID.Ptr(),
		DeliveryStatusID:   in.DeliveryStatusID.Ptr(),
		CompletionStatusID: in.CompletionStatusID.Ptr(),
		DoInstall:          entities.DoInstallDeliver,
	}
	if in.DoInstall != nil {
		load.DoInstall = entities.DoInstall(*in.DoInstall)
	}
	if !load.DoInstall.Valid() {
		return nil, apperrors.NewInvalidInputError("do_install must be 0, 1 or 2")
	}
	if err := s.fillDefaults(ctx, &load); err != nil {
		return nil, err
	}

	groupIDs := in.NotificationGroupIDs
	if groupIDs == nil {
		ids, err := s.groupRepository.FindDefaultIDs(ctx, nil)
		if err != nil {
			return nil, err
		}
		groupIDs = ids
	}

	photoPath, err := s.savePhoto(photo)
	if err != nil {
		return nil, err
	}
	load.Photo = photoPath

	var notification *entities.Notification
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		id, err := s.loadRepository.Create(ctx, tx, load)
		if err != nil {
			return err
		}
		load.ID = id
		if err := s.loadRepository.SetNotificationGroups(ctx, tx, id, groupIDs); err != nil {
			return err
		}
		if err := s.writeHistory(ctx, tx, userID, id, in); err != nil {
			return err
		}
		notification, err = s.notificationService.Enqueue(ctx, tx, id, ActionCreated)
		return err
	})
	if err != nil {
		s.discardPhoto(photoPath)
		return nil, err
	}
	s.logger.Info("load created", zap.Uint64("loadID", load.ID), zap.Uint64("userID", userID))

	return s.saved(ctx, load.ID, notification, in.SendNow)
}

func (s *LoadService) Update(ctx context.Context, userID, id uint64, in dto.UpdateLoadDTO, photo *PhotoUpload) (*dto.LoadSavedDTO, error) {
	if !entities.DoInstall(in.DoInstall).Valid() {
		return nil, apperrors.NewInvalidInputError("do_install must be 0, 1 or 2")
	}

	photoPath, err := s.savePhoto(photo)
	if err != nil {
		return nil, err
	}

	var (
		notification *entities.Notification
		oldPhoto     *string
	)
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		existing, err := s.loadRepository.FindByID(ctx, tx, id, false)
		if err != nil {
			return err
		}
		oldPhoto = existing.Photo

		load := entities.Load{
			ID:                 id,
			JobName:            in.JobName,
			PONumber:           in.PONumber,
			SupplierID:         in.SupplierID.Ptr(),
			SPONumber:          in.SPONumber,
			Description:        in.Description,
			Notes:              in.Notes,
			LocationID:         in.LocationID.Ptr(),
			DeliveryStatusID:   in.DeliveryStatusID.Ptr(),
			CompletionStatusID: in.CompletionStatusID.Ptr(),
			DoInstall:          entities.DoInstall(in.DoInstall),
			Photo:              photoPath,
		}
		if err := s.loadRepository.Update(ctx, tx, load); err != nil {
			return err
		}
		if in.NotificationGroupIDs != nil {
			if err := s.loadRepository.SetNotificationGroups(ctx, tx, id, in.NotificationGroupIDs); err != nil {
				return err
			}
		}
		if err := s.writeHistory(ctx, tx, userID, id, in); err != nil {
			return err
		}
		notification, err = s.notificationService.Enqueue(ctx, tx, id, ActionUpdated)
		return err
	})
	if err != nil {
		s.discardPhoto(photoPath)
		return nil, err
	}
	if photoPath != nil {
		s.discardPhoto(oldPhoto)
	}
	s.logger.Info("load updated", zap.Uint64("loadID", id), zap.Uint64("userID", userID))

	return s.saved(ctx, id, notification, in.SendNow)
}

func (s *LoadService) Delete(ctx context.Context, userID, id uint64) error {
	if err := s.loadRepository.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("load deleted", zap.Uint64("loadID", id), zap.Uint64("userID", userID))
	return nil
}

func (s *LoadService) saved(ctx context.Context, id uint64, notification *entities.Notification, sendNow bool) (*dto.LoadSavedDTO, error) {
	var warnings []string
	if sendNow && notification != nil {
		warnings = s.notificationService.SendNow(ctx, *notification)
	}

	load, err := s.loadRepository.FindByID(ctx, nil, id, false)
	if err != nil {
		return nil, err
	}
	return &dto.LoadSavedDTO{Load: loadToDTO(*load), Warnings: warnings}, nil
}

// fillDefaults sets unset references to the records flagged is_default.
func (s *LoadService) fillDefaults(ctx context.Context, load *entities.Load) error {
	if load.LocationID == nil {
		loc, err := s.locationRepository.FindDefault(ctx)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if loc != nil {
			load.LocationID = &loc.ID
		}
	}
	if load.DeliveryStatusID == nil {
		st, err := s.deliveryStatusRepository.FindDefault(ctx)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if st != nil {
			load.DeliveryStatusID = &st.ID
		}
	}
	if load.CompletionStatusID == nil {
		st, err := s.completionStatusRepository.FindDefault(ctx)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if st != nil {
			load.CompletionStatusID = &st.ID
		}
	}
	return nil
}

func (s *LoadService) writeHistory(ctx context.Context, tx pgx.Tx, userID, loadID uint64, submitted interface{}) error {
	data, err := json.Marshal(submitted)
	if err != nil {
		return fmt.Errorf("encode load history: %w", err)
	}
	h := entities.LoadHistory{LoadID: loadID, Data: data}
	if userID != 0 {
		h.UserID = &userID
	}
	_, err = s.historyRepository.Create(ctx, tx, h)
	return err
}

func (s *LoadService) savePhoto(photo *PhotoUpload) (*string, error) {
	if photo == nil {
		return nil, nil
	}
	path, err := s.fileStorage.Save(photo.Reader, photo.Filename, config.UploadContexts[photoUploadContext].PathPrefix)
	if err != nil {
		return nil, fmt.Errorf("save load photo: %w", err)
	}
	return &path, nil
}

func (s *LoadService) discardPhoto(path *string) {
	if path == nil {
		return
	}
	if err := s.fileStorage.Delete(*path); err != nil {
		s.logger.Warn("could not remove photo", zap.String("path", *path), zap.Error(err))
	}
}
