package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/helping-hands-go/models"
)

// UserUpsert describes a profile sync. Empty DisplayName or PhotoURL keep the
// stored value; DefaultDisplayName is only used when the user is created.
type UserUpsert struct {
	UID                string
	Email              string
	DisplayName        string
	PhotoURL           string
	DefaultDisplayName string
	Now                time.Time
}

func (u UserUpsert) update() bson.M {
	set := bson.M{}
	onInsert := bson.M{
		"email":     u.Email,
		"createdAt": u.Now,
	}

	if u.DisplayName != "" {
		set["displayName"] = u.DisplayName
	} else {
		onInsert["displayName"] = u.DefaultDisplayName
	}
	if u.PhotoURL != "" {
		set["photoURL"] = u.PhotoURL
	} else {
		onInsert["photoURL"] = ""
	}

	update := bson.M{"$setOnInsert": onInsert}
	if len(set) > 0 {
		update["$set"] = set
	}
	return update
}

type UserRepo struct {
	conn *Mongo
	col  *mongo.Collection
}

func (r *UserRepo) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	if err := r.conn.guard(); err != nil {
		return nil, err
	}
	var user models.User
	if err := r.col.FindOne(ctx, bson.M{"uid": uid}).Decode(&user); err != nil {
		return nil, mapError("find user", err)
	}
	return &user, nil
}

// Upsert creates or updates the profile keyed by UID in a single round trip.
func (r *UserRepo) Upsert(ctx context.Context, u UserUpsert) (*models.User, error) {
	if err := r.conn.guard(); err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user models.User
	err := r.col.FindOneAndUpdate(ctx, bson.M{"uid": u.UID}, u.update(), opts).Decode(&user)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent first sync inserted the document; this attempt now
		// matches it and applies as an update.
		err = r.col.FindOneAndUpdate(ctx, bson.M{"uid": u.UID}, u.update(), opts).Decode(&user)
	}
	if err != nil {
		return nil, mapError("sync user", err)
	}
	return &user, nil
}
