package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultProductImage is used when a product is stored without an image.
const DefaultProductImage = "/placeholder.jpg"

// Product is a catalog entry. Price is nil when the item is priced on request.
type Product struct {
	ID          primitive.ObjectID `json:"_id"         bson:"_id,omitempty"`
	Title       string             `json:"title"       bson:"title"`
	Description string             `json:"description" bson:"description"`
	Price       *float64           `json:"price"       bson:"price"`
	Image       string             `json:"image"       bson:"image"`
	Details     string             `json:"details"     bson:"details"`
	CreatedAt   time.Time          `json:"createdAt"   bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"   bson:"updatedAt"`
}

// ProductInput is the JSON body for POST /api/products. Absent fields fall
// back to the schema defaults, unknown fields are dropped.
type ProductInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Price       *Price  `json:"price"`
	Image       *string `json:"image"`
	Details     *string `json:"details"`
}

// Product applies defaults and returns the record to insert.
func (in ProductInput) Product() Product {
	p := Product{Image: DefaultProductImage}
	if in.Price != nil {
		v := float64(*in.Price)
		p.Price = &v
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	if in.Details != nil {
		p.Details = *in.Details
	}
	return p
}

// Price accepts a JSON number or a numeric string such as "120".
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("price %q is not a number", s)
		}
		*p = Price(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Price(v)
	return nil
}
