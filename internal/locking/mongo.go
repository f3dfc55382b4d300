package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"rentals/pkg/clock"
	"rentals/pkg/model"
)

const LockCollectionName = "Reservation_locks"

// MongoStore keeps lock entries as documents whose _id is the lock key, so the
// unique _id index makes concurrent inserts for one key mutually exclusive
// across processes.
type MongoStore struct {
	collection *mongo.Collection
	clock      clock.Clock
}

func NewMongoStore(db *mongo.Database, clk clock.Clock) *MongoStore {
	return &MongoStore{
		collection: db.Collection(LockCollectionName),
		clock:      clk,
	}
}

// Acquire deletes an expired entry for the key (if any) and then inserts.
// Only expired documents are deleted, so two racing callers can both clear a
// stale entry but only one insert survives the duplicate key check.
func (s *MongoStore) Acquire(ctx context.Context, entry Entry, ttl time.Duration) (bool, error) {
	now := s.clock.Now()

	_, err := s.collection.DeleteOne(ctx, bson.M{
		"_id":        string(entry.Key),
		"expires_at": bson.M{"$lte": now},
	})
	if err != nil {
		return false, fmt.Errorf("failed to purge expired lock: %w", err)
	}

	lock := &model.ReservationLock{
		ID:         string(entry.Key),
		Owner:      entry.Owner,
		ResourceID: entry.ResourceID,
		CheckIn:    entry.Start,
		CheckOut:   entry.End,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}
	if _, err := s.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert lock: %w", err)
	}
	return true, nil
}

func (s *MongoStore) Holder(ctx context.Context, key Key) (string, bool, error) {
	filter := bson.M{
		"_id":        string(key),
		"expires_at": bson.M{"$gt": s.clock.Now()},
	}

	var lock model.ReservationLock
	if err := s.collection.FindOne(ctx, filter).Decode(&lock); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read lock: %w", err)
	}
	return lock.Owner, true, nil
}

func (s *MongoStore) Release(ctx context.Context, key Key, owner string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": string(key), "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Claim deletes the owner's document only while it is unexpired; DeleteOne is
// atomic per document so concurrent claimers see a single deletion.
func (s *MongoStore) Claim(ctx context.Context, key Key, owner string) (bool, error) {
	result, err := s.collection.DeleteOne(ctx, bson.M{
		"_id":        string(key),
		"owner":      owner,
		"expires_at": bson.M{"$gt": s.clock.Now()},
	})
	if err != nil {
		return false, fmt.Errorf("failed to claim lock: %w", err)
	}
	return result.DeletedCount == 1, nil
}

func (s *MongoStore) Sweep(ctx context.Context) (int, error) {
	result, err := s.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": s.clock.Now()}})
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired locks: %w", err)
	}
	return int(result.DeletedCount), nil
}
