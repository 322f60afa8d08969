package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"load-tracker/internal/dto"
	"load-tracker/internal/entities"
	"load-tracker/internal/repositories"
	apperrors "load-tracker/pkg/errors"
	"load-tracker/pkg/mailer"
)

const (
	ActionCreated = "Created"
	ActionUpdated = "Updated"

	sectionSeparator = "------------------------------------"
	mailErrorWarning = "There was an error sending emails."
)

type NotificationService struct {
	notificationRepository repositories.NotificationRepositoryInterface
	loadRepository         repositories.LoadRepositoryInterface
	groupRepository        repositories.NotificationGroupRepositoryInterface
	mailer                 mailer.Mailer
	baseURL                string
	logger                 *zap.Logger
}

func NewNotificationService(
	notificationRepository repositories.NotificationRepositoryInterface,
	loadRepository repositories.LoadRepositoryInterface,
	groupRepository repositories.NotificationGroupRepositoryInterface,
	mailer mailer.Mailer,
	baseURL string,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepository: notificationRepository,
		loadRepository:         loadRepository,
		groupRepository:        groupRepository,
		mailer:                 mailer,
		baseURL:                strings.TrimRight(baseURL, "/"),
		logger:                 logger,
	}
}

// MergeAction combines the label of a pending entry with a new one.
// Repeating a label that is already present changes nothing.
func MergeAction(existing, next string) string {
	switch {
	case existing == "":
		return next
	case next == "", existing == next, strings.HasSuffix(existing, " and "+next):
		return existing
	}
	return existing + " and " + next
}

// Enqueue creates the pending entry for a load or merges action into the
// existing one. It runs inside the caller's transaction.
func (s *NotificationService) Enqueue(ctx context.Context, tx pgx.Tx, loadID uint64, action string) (*entities.Notification, error) {
	existing, err := s.notificationRepository.FindByLoadIDForUpdate(ctx, tx, loadID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		id, created, err := s.notificationRepository.Create(ctx, tx, loadID, action)
		if err != nil {
			return nil, err
		}
		if created {
			return &entities.Notification{ID: id, LoadID: loadID, Action: action}, nil
		}
		// lost the insert race; the row is there now
		existing, err = s.notificationRepository.FindByLoadIDForUpdate(ctx, tx, loadID)
		if err != nil {
			return nil, err
		}
	}

	merged := MergeAction(existing.Action, action)
	if merged != existing.Action {
		if err := s.notificationRepository.UpdateAction(ctx, tx, existing.ID, merged); err != nil {
			return nil, err
		}
		existing.Action = merged
	}
	return existing, nil
}

// SendNow mails a single entry right away. The entry is removed only when the
// message went out; otherwise it stays queued and a warning is returned.
func (s *NotificationService) SendNow(ctx context.Context, n entities.Notification) []string {
	loads, groups, err := s.loadContext(ctx, []uint64{n.LoadID})
	if err != nil {
		s.logger.Error("SendNow: load lookup failed", zap.Uint64("loadID", n.LoadID), zap.Error(err))
		return []string{mailErrorWarning, err.Error()}
	}
	load, ok := loads[n.LoadID]
	if !ok {
		return []string{fmt.Sprintf("load %d not found, notification left in the queue", n.LoadID)}
	}

	recipients := collectRecipients(groups[n.LoadID], nil)
	msg := s.composeSingle(n.Action, load)
	msg.To = recipients

	if warn := s.deliver(ctx, msg); warn != nil {
		return warn
	}

	if _, err := s.notificationRepository.DeleteByIDs(ctx, []uint64{n.ID}); err != nil {
		s.logger.Error("SendNow: delete after send failed", zap.Uint64("notificationID", n.ID), zap.Error(err))
		return []string{"notification was sent but is still queued"}
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context) ([]dto.NotificationDTO, error) {
	notifications, err := s.notificationRepository.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationToDTO(n))
	}
	return out, nil
}

func (s *NotificationService) Count(ctx context.Context) (uint64, error) {
	n, err := s.notificationRepository.Count(ctx)
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// Process runs one queue operation from the queue page.
func (s *NotificationService) Process(ctx context.Context, operation string, ids []uint64) (*dto.QueueResultDTO, error) {
	switch operation {
	case dto.QueueSendSelectedDeleteSelected:
		return s.ProcessSelected(ctx, ids)
	case dto.QueueSendSelectedDeleteAll:
		return s.ProcessAllFlushRemaining(ctx, ids)
	case dto.QueueDeleteSelected:
		return s.Discard(ctx, ids), nil
	}
	return nil, apperrors.NewInvalidInputError("unknown queue operation %q", operation)
}

// ProcessSelected sends one batched message for the selection and then
// deletes every selected entry, whatever the mail outcome.
func (s *NotificationService) ProcessSelected(ctx context.Context, ids []uint64) (*dto.QueueResultDTO, error) {
	notifications, err := s.notificationRepository.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := s.sendBatch(ctx, notifications)

	found := make([]uint64, 0, len(notifications))
	for _, n := range notifications {
		found = append(found, n.ID)
	}
	deleted, err := s.notificationRepository.DeleteByIDs(ctx, found)
	if err != nil {
		return nil, err
	}
	result.Deleted = int(deleted)
	return result, nil
}

// ProcessAllFlushRemaining sends the selection and then empties the queue.
func (s *NotificationService) ProcessAllFlushRemaining(ctx context.Context, ids []uint64) (*dto.QueueResultDTO, error) {
	notifications, err := s.notificationRepository.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := s.sendBatch(ctx, notifications)

	deleted, err := s.notificationRepository.DeleteAll(ctx)
	if err != nil {
		return nil, err
	}
	result.Deleted = int(deleted)
	return result, nil
}

// Discard deletes each selected entry on its own; a failed delete is
// reported and the rest are still attempted.
func (s *NotificationService) Discard(ctx context.Context, ids []uint64) *dto.QueueResultDTO {
	result := &dto.QueueResultDTO{Recipients: []string{}}
	for _, id := range ids {
		n, err := s.notificationRepository.DeleteByIDs(ctx, []uint64{id})
		if err != nil {
			s.logger.Warn("Discard: delete failed", zap.Uint64("notificationID", id), zap.Error(err))
			result.Warnings = append(result.Warnings, fmt.Sprintf("notification %d could not be deleted: %v", id, err))
			continue
		}
		result.Deleted += int(n)
	}
	return result
}

func (s *NotificationService) sendBatch(ctx context.Context, notifications []entities.Notification) *dto.QueueResultDTO {
	result := &dto.QueueResultDTO{Recipients: []string{}}
	if len(notifications) == 0 {
		return result
	}

	loadIDs := make([]uint64, 0, len(notifications))
	for _, n := range notifications {
		loadIDs = append(loadIDs, n.LoadID)
	}
	loads, groups, err := s.loadContext(ctx, loadIDs)
	if err != nil {
		s.logger.Error("sendBatch: load lookup failed", zap.Error(err))
		result.Warnings = []string{mailErrorWarning, err.Error()}
		return result
	}

	var (
		recipients []string
		items      []batchItem
	)
	for _, n := range notifications {
		load, ok := loads[n.LoadID]
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("load %d not found, skipped", n.LoadID))
			continue
		}
		recipients = collectRecipients(groups[n.LoadID], recipients)
		items = append(items, batchItem{action: n.Action, load: load})
	}
	if len(items) == 0 {
		return result
	}

	msg := s.composeBatch(items)
	msg.To = recipients
	result.Recipients = recipients

	if warn := s.deliver(ctx, msg); warn != nil {
		result.Warnings = append(result.Warnings, warn...)
		return result
	}
	result.Sent = len(items)
	return result
}

// deliver sends msg and turns any failure into warnings.
func (s *NotificationService) deliver(ctx context.Context, msg mailer.Message) []string {
	if len(msg.To) == 0 {
		s.logger.Warn("notification has no recipients", zap.String("subject", msg.Subject))
		return []string{"No notification recipients are configured for this load; nothing was sent."}
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		mailErr := &apperrors.MailDeliveryError{Recipients: msg.To, Err: err}
		s.logger.Error("notification mail failed", zap.Error(mailErr))
		return []string{mailErrorWarning, mailErr.Error()}
	}
	return nil
}

func (s *NotificationService) loadContext(ctx context.Context, loadIDs []uint64) (map[uint64]entities.Load, map[uint64][]entities.NotificationGroup, error) {
	list, err := s.loadRepository.FindByIDs(ctx, loadIDs)
	if err != nil {
		return nil, nil, err
	}
	loads := make(map[uint64]entities.Load, len(list))
	for _, l := range list {
		loads[l.ID] = l
	}
	groups, err := s.groupRepository.FindByLoadIDs(ctx, loadIDs)
	if err != nil {
		return nil, nil, err
	}
	return loads, groups, nil
}

// ParseRecipients splits a group's address list on commas and semicolons.
func ParseRecipients(addresses string) []string {
	out := make([]string, 0)
	for _, part := range strings.FieldsFunc(addresses, func(r rune) bool { return r == ',' || r == ';' }) {
		if email := strings.TrimSpace(part); email != "" {
			out = append(out, email)
		}
	}
	return out
}

// collectRecipients appends the addresses of groups to acc, skipping ones
// already present. First appearance wins the position.
func collectRecipients(groups []entities.NotificationGroup, acc []string) []string {
	seen := make(map[string]struct{}, len(acc))
	for _, e := range acc {
		seen[e] = struct{}{}
	}
	for _, g := range groups {
		for _, email := range ParseRecipients(g.EmailAddresses) {
			if _, ok := seen[email]; ok {
				continue
			}
			seen[email] = struct{}{}
			acc = append(acc, email)
		}
	}
	if acc == nil {
		acc = []string{}
	}
	return acc
}

type batchItem struct {
	action string
	load   entities.Load
}

func (s *NotificationService) loadURL(id uint64) string {
	return s.baseURL + "/loads/" + strconv.FormatUint(id, 10)
}

func subjectFragment(action string, load entities.Load) string {
	return fmt.Sprintf("Load %s: %s - %s", action, load.PONumber, load.JobName)
}

func loadLines(load entities.Load) [][2]string {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	return [][2]string{
		{"Job Name", load.JobName},
		{"PO Number", load.PONumber},
		{"Supplier", deref(load.SupplierName)},
		{"Supplier PO Number", load.SPONumber},
		{"Description", load.Description},
		{"Location", deref(load.LocationName)},
		{"Delivery Status", deref(load.DeliveryStatusName)},
		{"Completion Status", deref(load.CompletionStatusName)},
		{"Notes", load.Notes},
	}
}

func (s *NotificationService) textSection(action string, load entities.Load) []string {
	lines := []string{"The following load was " + action, ""}
	for _, kv := range loadLines(load) {
		lines = append(lines, kv[0]+": "+kv[1])
	}
	return append(lines, "URL: "+s.loadURL(load.ID))
}

func (s *NotificationService) htmlSection(action string, load entities.Load) []string {
	lines := []string{"The following load was " + html.EscapeString(action), ""}
	for _, kv := range loadLines(load) {
		lines = append(lines, kv[0]+": "+html.EscapeString(kv[1]))
	}
	url := html.EscapeString(s.loadURL(load.ID))
	return append(lines, fmt.Sprintf(`URL: <a href="%s">%s</a>`, url, url))
}

func (s *NotificationService) composeSingle(action string, load entities.Load) mailer.Message {
	return mailer.Message{
		Subject: subjectFragment(action, load),
		Text:    strings.Join(s.textSection(action, load), "\n"),
		HTML:    strings.Join(s.htmlSection(action, load), "<br>\n"),
	}
}

func (s *NotificationService) composeBatch(items []batchItem) mailer.Message {
	var (
		subject  strings.Builder
		text     strings.Builder
		htmlBody strings.Builder
	)
	subject.WriteString("Notification")
	for _, it := range items {
		subject.WriteString(":: " + subjectFragment(it.action, it.load))
		text.WriteString(strings.Join(append(s.textSection(it.action, it.load), sectionSeparator, ""), "\n"))
		htmlBody.WriteString(strings.Join(append(s.htmlSection(it.action, it.load), sectionSeparator, ""), "<br>\n"))
	}
	return mailer.Message{Subject: subject.String(), Text: text.String(), HTML: htmlBody.String()}
}

func notificationToDTO(n entities.Notification) dto.NotificationDTO {
	return dto.NotificationDTO{
		ID:          n.ID,
		LoadID:      n.LoadID,
		Action:      n.Action,
		JobName:     n.JobName,
		PONumber:    n.PONumber,
		CreatedWhen: formatTime(n.CreatedWhen),
	}
}
