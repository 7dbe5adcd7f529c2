package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nguyentranbao-ct/message-core/internal/models"
)

// MigrationRepository prepares the messages collection for the message core.
type MigrationRepository interface {
	EnsureMessageIndexes(ctx context.Context) error
	NormalizeMessageSets(ctx context.Context) error
	GetMigrationStatus(ctx context.Context, migrationName string) (*MigrationStatus, error)
	SetMigrationStatus(ctx context.Context, migrationName string, status string, result *MigrationResult) error
}

type migrationRepo struct {
	db *DB
}

// MigrationStatus tracks the status of database migrations
type MigrationStatus struct {
	ID          string           `bson:"_id,omitempty" json:"id"`
	Name        string           `bson:"name" json:"name"`
	Status      string           `bson:"status" json:"status"` // "running", "completed", "failed"
	StartedAt   *time.Time       `bson:"started_at" json:"started_at"`
	CompletedAt *time.Time       `bson:"completed_at" json:"completed_at"`
	Result      *MigrationResult `bson:"result,omitempty" json:"result,omitempty"`
	CreatedAt   time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `bson:"updated_at" json:"updated_at"`
}

// MigrationResult contains the results of a migration
type MigrationResult struct {
	RecordsProcessed int      `bson:"records_processed" json:"records_processed"`
	RecordsUpdated   int      `bson:"records_updated" json:"records_updated"`
	Errors           []string `bson:"errors,omitempty" json:"errors,omitempty"`
	Duration         string   `bson:"duration" json:"duration"`
}

const (
	migrationRunning   = "running"
	migrationCompleted = "completed"
	migrationFailed    = "failed"
)

func NewMigrationRepository(db *DB) MigrationRepository {
	return &migrationRepo{
		db: db,
	}
}

func (r *migrationRepo) messages() *mongo.Collection {
	return r.db.Database.Collection(models.Message{}.CollectionName())
}

// EnsureMessageIndexes creates the indexes the pagination, tag lookup and
// aggregation queries rely on. Creating an existing index is a no-op.
func (r *migrationRepo) EnsureMessageIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("conversation_id_1__id_-1"),
		},
		{
			Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "created", Value: 1}},
			Options: options.Index().SetName("conversation_id_1_created_1"),
		},
		{
			Keys:    bson.D{{Key: "tags.tag", Value: 1}},
			Options: options.Index().SetName("tags.tag_1"),
		},
	}

	names, err := r.messages().Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create message indexes: %w", storeError(err))
	}
	log.Infow(ctx, "Message indexes ensured", "indexes", names)
	return nil
}

// NormalizeMessageSets turns missing or null set fields into empty arrays, so
// $addToSet, $pull and $push never hit a non-array field.
func (r *migrationRepo) NormalizeMessageSets(ctx context.Context) error {
	migrationName := "normalize_message_sets"

	status, err := r.GetMigrationStatus(ctx, migrationName)
	if err == nil && status.Status == migrationCompleted {
		log.Infow(ctx, "Migration already completed", "migration", migrationName)
		return nil
	}

	startTime := time.Now()
	if err := r.SetMigrationStatus(ctx, migrationName, migrationRunning, nil); err != nil {
		return fmt.Errorf("failed to set migration status: %w", err)
	}

	log.Infow(ctx, "Starting message set normalization", "migration", migrationName)

	batch := make([]mongo.WriteModel, 0, 3)
	for _, field := range []string{"tags", "reactions", "likes"} {
		batch = append(batch, mongo.NewUpdateManyModel().
			SetFilter(bson.M{field: bson.M{"$not": bson.M{"$type": "array"}}}).
			SetUpdate(bson.M{"$set": bson.M{field: bson.A{}}}))
	}

	result := &MigrationResult{}
	if err := r.executeBatch(ctx, r.messages(), batch, result); err != nil {
		return r.completeMigrationWithError(ctx, migrationName, startTime, err)
	}
	result.Duration = time.Since(startTime).String()

	if err := r.SetMigrationStatus(ctx, migrationName, migrationCompleted, result); err != nil {
		log.Errorw(ctx, "Failed to set migration completion status", "error", err)
	}

	log.Infow(ctx, "Message set normalization completed",
		"migration", migrationName,
		"processed", result.RecordsProcessed,
		"updated", result.RecordsUpdated,
		"duration", result.Duration)

	return nil
}

func (r *migrationRepo) executeBatch(ctx context.Context, collection *mongo.Collection, batch []mongo.WriteModel, result *MigrationResult) error {
	if len(batch) == 0 {
		return nil
	}

	bulkResult, err := collection.BulkWrite(ctx, batch, options.BulkWrite().SetOrdered(false))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("bulk write error: %v", err))
		return storeError(err)
	}

	result.RecordsProcessed += int(bulkResult.MatchedCount)
	result.RecordsUpdated += int(bulkResult.ModifiedCount)

	return nil
}

func (r *migrationRepo) completeMigrationWithError(ctx context.Context, migrationName string, startTime time.Time, err error) error {
	result := &MigrationResult{
		Duration: time.Since(startTime).String(),
		Errors:   []string{err.Error()},
	}

	if setErr := r.SetMigrationStatus(ctx, migrationName, migrationFailed, result); setErr != nil {
		log.Errorw(ctx, "Failed to set migration failure status", "error", setErr)
	}

	return err
}

func (r *migrationRepo) GetMigrationStatus(ctx context.Context, migrationName string) (*MigrationStatus, error) {
	collection := r.db.Database.Collection("migrations")

	var status MigrationStatus
	err := collection.FindOne(ctx, bson.M{"name": migrationName}).Decode(&status)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get migration status: %w", storeError(err))
	}

	return &status, nil
}

func (r *migrationRepo) SetMigrationStatus(ctx context.Context, migrationName string, status string, result *MigrationResult) error {
	collection := r.db.Database.Collection("migrations")

	now := time.Now()
	set := bson.M{
		"name":       migrationName,
		"status":     status,
		"updated_at": now,
	}

	switch status {
	case migrationRunning:
		set["started_at"] = now
	case migrationCompleted, migrationFailed:
		set["completed_at"] = now
		if result != nil {
			set["result"] = result
		}
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, bson.M{"name": migrationName}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to set migration status: %w", storeError(err))
	}

	return nil
}
