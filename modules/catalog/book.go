// Package catalog is the books vertical slice: the entity model, its
// MongoDB repository, and the service gluing mutations to the
// notification hub and the image store. The interesting machinery lives
// in pkg/wshub and pkg/storage; this package is deliberately thin.
package catalog

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Book is the catalog entity. Optional fields are pointers so a missing
// value is omitted from both JSON and BSON rather than rendered as null.
type Book struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string        `json:"name" bson:"name"`
	Price     float64       `json:"price" bson:"price"`
	Category  string        `json:"category" bson:"category"`
	Author    string        `json:"author" bson:"author"`
	Image     *string       `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt *time.Time    `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
