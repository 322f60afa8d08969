package services

import (
	"time"

	"github.com/aarondl/null/v8"

	"load-tracker/internal/dto"
	"load-tracker/internal/entities"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func shortRef(id *uint64, name *string) *dto.ShortDTO {
	if id == nil {
		return nil
	}
	ref := &dto.ShortDTO{ID: *id}
	if name != nil {
		ref.Name = *name
	}
	return ref
}

func loadToDTO(l entities.Load) dto.LoadDTO {
	out := dto.LoadDTO{
		ID:                   l.ID,
		JobName:              l.JobName,
		PONumber:             l.PONumber,
		Supplier:             shortRef(l.SupplierID, l.SupplierName),
		SPONumber:            l.SPONumber,
		Description:          l.Description,
		Notes:                l.Notes,
		Location:             shortRef(l.LocationID, l.LocationName),
		DeliveryStatus:       shortRef(l.DeliveryStatusID, l.DeliveryStatusName),
		DeliveryIsPending:    null.BoolFromPtr(l.DeliveryStatusActive),
		CompletionStatus:     shortRef(l.CompletionStatusID, l.CompletionStatusName),
		CompletionIsPending:  null.BoolFromPtr(l.CompletionStatusActive),
		DoInstall:            int(l.DoInstall),
		DoInstallLabel:       l.DoInstall.Label(),
		Photo:                null.StringFromPtr(l.Photo),
		NotificationGroupIDs: l.NotificationGroupIDs,
		CreatedWhen:          formatTime(l.CreatedWhen),
		UpdatedWhen:          formatTime(l.UpdatedWhen),
	}
	if out.NotificationGroupIDs == nil {
		out.NotificationGroupIDs = []uint64{}
	}
	if l.DeletedWhen != nil {
		out.DeletedWhen = null.StringFrom(formatTime(*l.DeletedWhen))
	}
	return out
}

func historyToDTO(h entities.LoadHistory) dto.LoadHistoryDTO {
	return dto.LoadHistoryDTO{
		ID:          h.ID,
		UserID:      null.Uint64FromPtr(h.UserID),
		ChangedWhen: formatTime(h.ChangedWhen),
		Data:        h.Data,
	}
}

func locationToDTO(l entities.Location) dto.LocationDTO {
	return dto.LocationDTO{
		ID:        l.ID,
		Name:      l.Name,
		IsDefault: l.IsDefault,
		CreatedAt: formatTime(l.CreatedAt),
		UpdatedAt: formatTime(l.UpdatedAt),
	}
}

func supplierToDTO(s entities.Supplier) dto.SupplierDTO {
	return dto.SupplierDTO{
		ID:        s.ID,
		Name:      s.Name,
		Details:   s.Details,
		CreatedAt: formatTime(s.CreatedAt),
		UpdatedAt: formatTime(s.UpdatedAt),
	}
}

func statusToDTO(s entities.Status) dto.StatusDTO {
	recipients := s.RecipientIDs
	if recipients == nil {
		recipients = []uint64{}
	}
	return dto.StatusDTO{
		ID:           s.ID,
		Name:         s.Name,
		Rank:         s.Rank,
		IsActive:     s.IsActive,
		IsDefault:    s.IsDefault,
		RecipientIDs: recipients,
	}
}

func groupToDTO(g entities.NotificationGroup) dto.NotificationGroupDTO {
	return dto.NotificationGroupDTO{
		ID:             g.ID,
		Name:           g.Name,
		EmailAddresses: g.EmailAddresses,
		Recipients:     ParseRecipients(g.EmailAddresses),
		IsDefault:      g.IsDefault,
	}
}
