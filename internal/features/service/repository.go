package service

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

type ServiceRepository interface {
	Create(ctx context.Context, svc *common_models.Service) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, svc *common_models.Service) error
	Get(ctx context.Context, id string) (*common_models.Service, error)
	FindByCode(ctx context.Context, code string) ([]common_models.Service, error)
	FindByName(ctx context.Context, name string) (*common_models.Service, error)
	List(ctx context.Context, limit, offset int64) ([]common_models.Service, error)
	EnsureIndexes(ctx context.Context) error
}

type ServiceRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewServiceRepository(mongodb *database.MongodbDB) ServiceRepository {
	return &ServiceRepositoryImpl{
		Collection: mongodb.DB.Collection("services"),
	}
}

func (r *ServiceRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *ServiceRepositoryImpl) Create(ctx context.Context, svc *common_models.Service) (primitive.ObjectID, error) {
	if svc.ID.IsZero() {
		svc.ID = primitive.NewObjectID()
	}
	if tenantID, ok := ctx.Value(common_models.TenantIDKey).(string); ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			svc.TenantID = oid
		}
	}
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = svc.CreatedAt

	_, err := r.Collection.InsertOne(ctx, svc)
	if err != nil {
		return primitive.NilObjectID, database.WrapWriteError(err)
	}
	return svc.ID, nil
}

func (r *ServiceRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, svc *common_models.Service) error {
	svc.UpdatedAt = time.Now()

	update := bson.M{
		"code":           svc.Code,
		"name":           svc.Name,
		"category":       svc.Category,
		"price":          svc.Price,
		"renewal_months": svc.RenewalMonths,
		"updated_at":     svc.UpdatedAt,
	}

	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return database.WrapWriteError(err)
}

func (r *ServiceRepositoryImpl) Get(ctx context.Context, id string) (*common_models.Service, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var svc common_models.Service
	if err := r.Collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *ServiceRepositoryImpl) FindByCode(ctx context.Context, code string) ([]common_models.Service, error) {
	query := bson.M{"code": code}
	if tenantID, ok := ctx.Value(common_models.TenantIDKey).(string); ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			query["tenant_id"] = oid
		}
	}

	cursor, err := r.Collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	var services []common_models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (r *ServiceRepositoryImpl) FindByName(ctx context.Context, name string) (*common_models.Service, error) {
	query := bson.M{"name": name}
	if tenantID, ok := ctx.Value(common_models.TenantIDKey).(string); ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			query["tenant_id"] = oid
		}
	}

	var svc common_models.Service
	if err := r.Collection.FindOne(ctx, query).Decode(&svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *ServiceRepositoryImpl) List(ctx context.Context, limit, offset int64) ([]common_models.Service, error) {
	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"name": 1})

	query := bson.M{}
	if tenantID, ok := ctx.Value(common_models.TenantIDKey).(string); ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			query["tenant_id"] = oid
		}
	}

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var services []common_models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}
