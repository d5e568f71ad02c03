package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/skeeper75/widget.creator-sub002/api/responses"
	"github.com/skeeper75/widget.creator-sub002/api/validators"
	ordersvc "github.com/skeeper75/widget.creator-sub002/internal/orders"
	"github.com/skeeper75/widget.creator-sub002/pkg/enums"
	pkgerrors "github.com/skeeper75/widget.creator-sub002/pkg/errors"
	"github.com/skeeper75/widget.creator-sub002/pkg/logger"
)

const (
	ordersDefaultLimit = 20
	ordersMaxLimit     = 100
)

// CreateOrder re-quotes the submitted configuration server side and persists
// the order snapshot when every constraint passes.
func CreateOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload ordersvc.ConfirmOrderInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithProductID(r.Context(), payload.ProductID)
		order, err := svc.Confirm(ctx, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders returns a page of confirmed orders, newest first.
func ListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", ordersDefaultLimit, 1, ordersMaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := ordersvc.ListOrdersParams{Limit: limit, Offset: offset}
		if raw := validators.ParseQueryString(r, "status", ""); raw != "" {
			status, parseErr := enums.ParseOrderStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			params.Status = &status
		}

		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// GetOrder fetches one order snapshot by its public order code.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderCode := strings.TrimSpace(chi.URLParam(r, "orderCode"))
		if orderCode == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order code is required"))
			return
		}

		ctx := logg.WithOrderCode(r.Context(), orderCode)
		order, err := svc.Get(ctx, orderCode)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
