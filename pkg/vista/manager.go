package vista

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	apperrors "load-tracker/pkg/errors"
)

type Source string

const (
	SourceDefault   Source = "default"
	SourceSubmitted Source = "submitted"
	SourceStash     Source = "stash"
	SourceSaved     Source = "saved"
	SourceLatest    Source = "latest"
)

const maxNameLength = 100

// Result is the view applied to one list request.
type Result struct {
	Spec     Spec
	Source   Source
	Name     string
	Issues   []*apperrors.ValidationError
	Warnings []string
}

// Manager applies and persists views for one model.
type Manager struct {
	fields   *Fields
	defaults Spec
	limits   Limits
	store    Store
	stash    Stash
	logger   *zap.Logger
}

// NewManager validates the hardcoded defaults against the registry; any
// dropped default is a configuration error.
func NewManager(fields *Fields, defaults url.Values, limits Limits, store Store, stash Stash, logger *zap.Logger) (*Manager, error) {
	spec, issues := fields.Parse(defaults, limits)
	if len(issues) > 0 {
		return nil, fmt.Errorf("invalid default view for %s: %w", fields.Model(), issues[0])
	}
	return &Manager{
		fields:   fields,
		defaults: spec,
		limits:   limits,
		store:    store,
		stash:    stash,
		logger:   logger,
	}, nil
}

func (m *Manager) Fields() *Fields { return m.fields }
func (m *Manager) Limits() Limits  { return m.limits }

// Stash returns the query stash, nil when none is configured.
func (m *Manager) Stash() Stash { return m.stash }

// ApplyDefault returns the hardcoded fallback view.
func (m *Manager) ApplyDefault() Result {
	return Result{Spec: m.defaults.clone(), Source: SourceDefault}
}

// ApplyAndSave validates values, records them as the user's latest query
// and, when name is set, saves them under that name.
func (m *Manager) ApplyAndSave(ctx context.Context, userID uint64, values url.Values, name string, makeDefault bool) (Result, error) {
	spec, issues := m.fields.Parse(values, m.limits)
	res := Result{Spec: spec, Source: SourceSubmitted, Issues: issues}
	query := spec.Values().Encode()

	if err := m.store.Save(ctx, Saved{UserID: userID, Model: m.fields.Model(), Name: LatestName, Query: query}); err != nil {
		return Result{}, fmt.Errorf("record latest view: %w", err)
	}

	name = strings.TrimSpace(name)
	switch {
	case name == "" && makeDefault:
		res.Issues = append(res.Issues, apperrors.NewValidationError(ParamMakeDefault, "a name is required to save a default view"))
	case len(name) > maxNameLength:
		res.Issues = append(res.Issues, apperrors.NewValidationError(ParamVistaName, "name is longer than %d characters", maxNameLength))
	case name != "":
		saved := Saved{UserID: userID, Model: m.fields.Model(), Name: name, IsDefault: makeDefault, Query: query}
		if err := m.store.Save(ctx, saved); err != nil {
			return Result{}, fmt.Errorf("save view %q: %w", name, err)
		}
		res.Name = name
		m.logger.Debug("view saved",
			zap.Uint64("userID", userID),
			zap.String("model", m.fields.Model()),
			zap.String("name", name),
			zap.Bool("default", makeDefault))
	}
	return res, nil
}

// RetrieveByName applies a saved view and marks it as the latest query.
func (m *Manager) RetrieveByName(ctx context.Context, userID uint64, name string) (Result, error) {
	saved, err := m.store.Find(ctx, userID, m.fields.Model(), strings.TrimSpace(name))
	if err != nil {
		return Result{}, err
	}
	res := m.fromSaved(saved, SourceSaved)
	latest := Saved{UserID: userID, Model: m.fields.Model(), Name: LatestName, Query: saved.Query}
	if err := m.store.Save(ctx, latest); err != nil {
		m.logger.Warn("could not record latest view", zap.Error(err), zap.Uint64("userID", userID))
	}
	return res, nil
}

// RetrieveDefault resolves the user's default view, then the latest query,
// then the hardcoded defaults. It never fails.
func (m *Manager) RetrieveDefault(ctx context.Context, userID uint64) Result {
	var warnings []string
	saved, err := m.store.FindDefault(ctx, userID, m.fields.Model())
	if err == nil {
		return m.fromSaved(saved, SourceSaved)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		warnings = append(warnings, m.lookupFailed("default", userID, err))
	}

	saved, err = m.store.Find(ctx, userID, m.fields.Model(), LatestName)
	if err == nil {
		res := m.fromSaved(saved, SourceLatest)
		res.Warnings = append(warnings, res.Warnings...)
		return res
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		warnings = append(warnings, m.lookupFailed("latest", userID, err))
	}

	res := m.ApplyDefault()
	res.Warnings = warnings
	return res
}

// RetrieveLatest resolves the latest query, then falls back like
// RetrieveDefault. It never fails.
func (m *Manager) RetrieveLatest(ctx context.Context, userID uint64) Result {
	saved, err := m.store.Find(ctx, userID, m.fields.Model(), LatestName)
	if err == nil {
		return m.fromSaved(saved, SourceLatest)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		res := m.RetrieveDefault(ctx, userID)
		res.Warnings = append([]string{m.lookupFailed("latest", userID, err)}, res.Warnings...)
		return res
	}
	return m.RetrieveDefault(ctx, userID)
}

// DeleteSaved removes a named view. Missing views are not an error.
func (m *Manager) DeleteSaved(ctx context.Context, userID uint64, name string) error {
	name = strings.TrimSpace(name)
	if name == LatestName {
		return nil
	}
	return m.store.Delete(ctx, userID, m.fields.Model(), name)
}

func (m *Manager) ListSaved(ctx context.Context, userID uint64) ([]Saved, error) {
	return m.store.List(ctx, userID, m.fields.Model())
}

// Describe is DescribeContext bound to this manager's registry and limits.
func (m *Manager) Describe(s Spec) Context {
	return DescribeContext(m.fields, s, m.limits)
}

// fromSaved re-validates a stored query; the registry may have changed
// since it was saved.
func (m *Manager) fromSaved(saved *Saved, source Source) Result {
	values, err := url.ParseQuery(saved.Query)
	if err != nil {
		m.logger.Warn("stored view is not a valid query",
			zap.String("model", saved.Model), zap.String("name", saved.Name), zap.Error(err))
		res := m.ApplyDefault()
		res.Warnings = []string{fmt.Sprintf("saved view %q is corrupt, defaults applied", saved.Name)}
		return res
	}
	spec, issues := m.fields.Parse(values, m.limits)
	return Result{Spec: spec, Source: source, Name: saved.Name, Issues: issues}
}

func (m *Manager) lookupFailed(kind string, userID uint64, err error) string {
	m.logger.Error("view lookup failed",
		zap.String("kind", kind),
		zap.String("model", m.fields.Model()),
		zap.Uint64("userID", userID),
		zap.Error(err))
	return fmt.Sprintf("could not load the %s view", kind)
}
