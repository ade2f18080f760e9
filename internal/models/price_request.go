package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PriceRequestStatus tracks the delivery of a price-list email.
type PriceRequestStatus string

const (
	PriceRequestPending PriceRequestStatus = "pending"
	PriceRequestSent    PriceRequestStatus = "sent"
	PriceRequestFailed  PriceRequestStatus = "failed"
)

// PriceRequestTTL is how long a price request stays valid after creation.
const PriceRequestTTL = 3 * 24 * time.Hour

// PriceRequest records one price-list email sent to a user.
type PriceRequest struct {
	ID           primitive.ObjectID `json:"_id"                    bson:"_id,omitempty"`
	User         primitive.ObjectID `json:"user"                   bson:"user"`
	Email        string             `json:"email"                  bson:"email"`
	RequestDate  time.Time          `json:"requestDate"            bson:"requestDate"`
	Status       PriceRequestStatus `json:"status"                 bson:"status"`
	DownloadLink string             `json:"downloadLink,omitempty" bson:"downloadLink,omitempty"`
	ExpiresAt    time.Time          `json:"expiresAt"              bson:"expiresAt"`
	CreatedAt    time.Time          `json:"createdAt"              bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"              bson:"updatedAt"`
}
