package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the local copy of an identity-provider profile, keyed by UID.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UID         string             `bson:"uid" json:"uid"`
	Email       string             `bson:"email" json:"email"`
	DisplayName string             `bson:"displayName" json:"displayName"`
	PhotoURL    string             `bson:"photoURL" json:"photoURL"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
