package import_feature

import (
	"context"
	"time"

	common_models "clientdesk/internal/common/models"
	"clientdesk/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ImportLogRepository is append-only: logs are created at run completion
// and never updated or deleted by the pipeline.
type ImportLogRepository interface {
	Create(ctx context.Context, log *ImportLog) error
	Get(ctx context.Context, id string) (*ImportLog, error)
	List(ctx context.Context, kind string, limit, offset int64) ([]ImportLog, error)
}

type ImportLogRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewImportLogRepository(mongodb *database.MongodbDB) ImportLogRepository {
	return &ImportLogRepositoryImpl{
		Collection: mongodb.DB.Collection("import_logs"),
	}
}

func (r *ImportLogRepositoryImpl) Create(ctx context.Context, log *ImportLog) error {
	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}
	if tenantID, ok := ctx.Value(common_models.TenantIDKey).(string); ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			log.TenantID = oid
		}
	}
	log.CreatedAt = time.Now()

	_, err := r.Collection.InsertOne(ctx, log)
	return err
}

func (r *ImportLogRepositoryImpl) Get(ctx context.Context, id string) (*ImportLog, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var log ImportLog
	if err := r.Collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&log); err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *ImportLogRepositoryImpl) List(ctx context.Context, kind string, limit, offset int64) ([]ImportLog, error) {
	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"created_at": -1})

	query := bson.M{}
	if kind != "" {
		query["kind"] = kind
	}
	if tenantID, ok := ctx.Value(common_models.TenantIDKey).(string); ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			query["tenant_id"] = oid
		}
	}

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var logs []ImportLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
