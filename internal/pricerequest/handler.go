package pricerequest

import (
	"errors"
	"log/slog"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vostok-trade/backend/internal/middleware"
	"github.com/vostok-trade/backend/internal/models"
	"github.com/vostok-trade/backend/internal/respond"
)

type Handler struct {
	wf *Workflow
}

func NewHandler(wf *Workflow) *Handler {
	return &Handler{wf: wf}
}

type requestResponse struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	RequestID *primitive.ObjectID `json:"requestId,omitempty"`
}

// RequestPrice emails the price list to the authenticated user.
func (h *Handler) RequestPrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFromContext(ctx)

	pr, err := h.wf.Request(ctx, user)
	switch {
	case errors.Is(err, ErrInvalidUser):
		respond.Message(w, http.StatusBadRequest, "Invalid user data")
	case err != nil:
		attrs := []any{"error", err}
		if pr != nil {
			attrs = append(attrs, "request_id", pr.ID.Hex(), "status", pr.Status)
		}
		slog.ErrorContext(ctx, "price request failed", attrs...)
		respond.JSON(w, http.StatusInternalServerError, requestResponse{
			Message: "Failed to send the price list",
		})
	default:
		slog.InfoContext(ctx, "price list sent", "request_id", pr.ID.Hex(), "user_id", user.ID.Hex())
		respond.JSON(w, http.StatusOK, requestResponse{
			Success:   true,
			Message:   "The price list has been sent to your email",
			RequestID: &pr.ID,
		})
	}
}

// History lists the caller's recent price requests.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFromContext(ctx)

	requests, err := h.wf.History(ctx, user)
	switch {
	case errors.Is(err, ErrInvalidUser):
		respond.Message(w, http.StatusBadRequest, "Invalid user data")
	case err != nil:
		slog.ErrorContext(ctx, "price request history", "user_id", user.ID.Hex(), "error", err)
		respond.JSON(w, http.StatusInternalServerError, requestResponse{
			Message: "Failed to load price request history",
		})
	default:
		if requests == nil {
			requests = []models.PriceRequest{}
		}
		respond.JSON(w, http.StatusOK, requests)
	}
}
