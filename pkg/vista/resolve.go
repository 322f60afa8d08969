package vista

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"

	apperrors "load-tracker/pkg/errors"
)

const (
	ParamDeleteVista    = "delete_vista"
	ParamStash          = "stash"
	ParamQuerySubmitted = "vista_query_submitted"
	ParamVistaName      = "vista_name"
	ParamMakeDefault    = "make_default"
	ParamRetrieveVista  = "retrieve_vista"
	ParamDefaultVista   = "default_vista"
)

// Request carries the parameters of one list request.
type Request struct {
	UserID uint64
	Values url.Values
}

// Resolve picks the view for a list request. The branches are checked in a
// fixed order and exactly one of them produces the result:
//
//	stash token, submitted query, named retrieval, reset to defaults, latest.
//
// A delete request is handled first and then falls through.
func (m *Manager) Resolve(ctx context.Context, req Request) (Result, error) {
	values := req.Values
	if values == nil {
		values = url.Values{}
	}

	if _, ok := values[ParamDeleteVista]; ok {
		name := values.Get(ParamVistaName)
		if name == "" {
			name = values.Get(ParamDeleteVista)
		}
		if err := m.DeleteSaved(ctx, req.UserID, name); err != nil {
			return Result{}, err
		}
	}

	switch {
	case values.Get(ParamStash) != "" && m.stash != nil:
		return m.resolveStash(ctx, req.UserID, values.Get(ParamStash))

	case has(values, ParamQuerySubmitted):
		makeDefault, _ := parseBool(values.Get(ParamMakeDefault))
		return m.ApplyAndSave(ctx, req.UserID, values, values.Get(ParamVistaName), makeDefault)

	case has(values, ParamRetrieveVista):
		name := values.Get(ParamVistaName)
		if name == "" {
			name = values.Get(ParamRetrieveVista)
		}
		res, err := m.RetrieveByName(ctx, req.UserID, name)
		if errors.Is(err, apperrors.ErrNotFound) {
			res = m.RetrieveLatest(ctx, req.UserID)
			res.Warnings = append(res.Warnings, "saved view \""+strings.TrimSpace(name)+"\" was not found")
			return res, nil
		}
		return res, err

	case has(values, ParamDefaultVista):
		res := m.ApplyDefault()
		latest := Saved{UserID: req.UserID, Model: m.fields.Model(), Name: LatestName, Query: res.Spec.Values().Encode()}
		if err := m.store.Save(ctx, latest); err != nil {
			return Result{}, err
		}
		return res, nil

	default:
		return m.RetrieveLatest(ctx, req.UserID), nil
	}
}

func (m *Manager) resolveStash(ctx context.Context, userID uint64, token string) (Result, error) {
	stashed, err := m.stash.Take(ctx, token)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			m.logger.Error("stash lookup failed", zap.Error(err))
		}
		res := m.RetrieveLatest(ctx, userID)
		res.Warnings = append(res.Warnings, "the linked query has expired")
		return res, nil
	}
	res, err := m.ApplyAndSave(ctx, userID, stashed, "", false)
	if err != nil {
		return Result{}, err
	}
	res.Source = SourceStash
	return res, nil
}

func has(values url.Values, key string) bool {
	_, ok := values[key]
	return ok
}
