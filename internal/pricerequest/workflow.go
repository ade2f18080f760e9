package pricerequest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vostok-trade/backend/internal/models"
)

// ErrInvalidUser means the caller has no resolved user or no email on file.
var ErrInvalidUser = errors.New("invalid user data")

// HistoryLimit caps how many past requests are returned to a user.
const HistoryLimit = 10

// StatusMode controls when a request's status is written.
type StatusMode string

const (
	// ModeEager stores every request as sent before delivery is attempted.
	ModeEager StatusMode = "eager"
	// ModeConfirmed stores the request as pending and records the delivery outcome.
	ModeConfirmed StatusMode = "confirmed"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "price_requests_total",
	Help: "Price list requests by outcome.",
}, []string{"outcome"})

type ProductLister interface {
	List(ctx context.Context) ([]models.Product, error)
}

type RequestStore interface {
	Create(ctx context.Context, pr *models.PriceRequest) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PriceRequestStatus) error
	ListRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.PriceRequest, error)
}

// Notifier delivers the price list to a recipient.
type Notifier interface {
	Send(ctx context.Context, to string, products []models.Product) error
}

// Workflow emails the price list to a user and logs each attempt.
type Workflow struct {
	products ProductLister
	requests RequestStore
	notifier Notifier
	mode     StatusMode
	now      func() time.Time
}

func NewWorkflow(products ProductLister, requests RequestStore, notifier Notifier, mode StatusMode) *Workflow {
	if mode != ModeConfirmed {
		mode = ModeEager
	}
	return &Workflow{
		products: products,
		requests: requests,
		notifier: notifier,
		mode:     mode,
		now:      time.Now,
	}
}

// Request sends the price list to user. Once the record is created it is
// returned even when delivery fails, so callers can tell the two apart.
func (wf *Workflow) Request(ctx context.Context, user *models.User) (*models.PriceRequest, error) {
	if user == nil || user.Email == "" {
		requestsTotal.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidUser
	}

	products, err := wf.products.List(ctx)
	if err != nil {
		requestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("load products: %w", err)
	}

	now := wf.now()
	pr := &models.PriceRequest{
		User:        user.ID,
		Email:       user.Email,
		RequestDate: now,
		Status:      models.PriceRequestSent,
		ExpiresAt:   now.Add(models.PriceRequestTTL),
	}
	if wf.mode == ModeConfirmed {
		pr.Status = models.PriceRequestPending
	}
	if err := wf.requests.Create(ctx, pr); err != nil {
		requestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("create price request: %w", err)
	}

	sendErr := wf.notifier.Send(ctx, user.Email, products)
	if sendErr != nil {
		requestsTotal.WithLabelValues("failed").Inc()
	} else {
		requestsTotal.WithLabelValues("sent").Inc()
	}

	if wf.mode == ModeConfirmed {
		status := models.PriceRequestSent
		if sendErr != nil {
			status = models.PriceRequestFailed
		}
		if err := wf.requests.UpdateStatus(ctx, pr.ID, status); err != nil {
			slog.ErrorContext(ctx, "update price request status",
				"request_id", pr.ID.Hex(), "status", status, "error", err)
		} else {
			pr.Status = status
		}
	}

	if sendErr != nil {
		return pr, fmt.Errorf("send price list: %w", sendErr)
	}
	return pr, nil
}

// History returns the user's most recent requests, newest first.
func (wf *Workflow) History(ctx context.Context, user *models.User) ([]models.PriceRequest, error) {
	if user == nil || user.ID.IsZero() {
		return nil, ErrInvalidUser
	}
	return wf.requests.ListRecentByUser(ctx, user.ID, HistoryLimit)
}
