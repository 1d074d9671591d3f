package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/streetfood/rawmart/api/middleware"
	"github.com/streetfood/rawmart/api/responses"
	"github.com/streetfood/rawmart/api/validators"
	orderssvc "github.com/streetfood/rawmart/internal/orders"
	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
	"github.com/streetfood/rawmart/pkg/logger"
	"github.com/streetfood/rawmart/pkg/types"
)

const maxHistoryLimit = 100

// action runs one order request and returns the success status and payload.
type action func(r *http.Request) (int, any, error)

func serve(svc orderssvc.Service, logg *logger.Logger, run action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		status, data, err := run(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, data)
	}
}

// PlaceOrder converts the session cart named in the body into an order.
// The route sits behind the idempotency middleware.
func PlaceOrder(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request) (int, any, error) {
		var payload types.PlaceOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return 0, nil, err
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSessionID(ctx, payload.SessionID)
		}
		receipt, err := svc.PlaceOrder(ctx, payload.SessionID)
		return http.StatusCreated, receipt, err
	})
}

// List returns the session's previous orders, newest first.
func List(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request) (int, any, error) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxHistoryLimit)
		if err != nil {
			return 0, nil, err
		}
		history, err := svc.ListBySession(r.Context(), chi.URLParam(r, middleware.SessionParam), limit)
		return http.StatusOK, history, err
	})
}
