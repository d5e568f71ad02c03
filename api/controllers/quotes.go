package controllers

import (
	"net/http"

	"github.com/skeeper75/widget.creator-sub002/api/responses"
	"github.com/skeeper75/widget.creator-sub002/api/validators"
	quotesvc "github.com/skeeper75/widget.creator-sub002/internal/quotes"
	pkgerrors "github.com/skeeper75/widget.creator-sub002/pkg/errors"
	"github.com/skeeper75/widget.creator-sub002/pkg/logger"
	"github.com/skeeper75/widget.creator-sub002/pkg/types"
)

const (
	recentQuotesDefaultLimit = 20
	recentQuotesMaxLimit     = 100
)

type quoteRequest struct {
	ProductID  int64            `json:"product_id" validate:"required,gt=0"`
	Selections types.Selections `json:"selections" validate:"required"`
}

// Quote evaluates a configuration against the product's active rules and
// returns the priced result without persisting anything client-visible.
func Quote(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithProductID(r.Context(), payload.ProductID)
		result, err := svc.Quote(ctx, quotesvc.QuoteInput{
			ProductID:  payload.ProductID,
			Selections: payload.Selections,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// RecentQuotes serves the latest quote log rows for a product.
func RecentQuotes(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		productID, err := validators.ParseQueryInt(r, "product_id", 0, 1, 1<<31)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if productID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", recentQuotesDefaultLimit, 1, recentQuotesMaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithProductID(r.Context(), int64(productID))
		recent, err := svc.Recent(ctx, int64(productID), limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"quotes": recent})
	}
}
