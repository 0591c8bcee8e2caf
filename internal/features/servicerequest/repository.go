package servicerequest

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

type ServiceRequestRepository interface {
	Create(ctx context.Context, req *common_models.ServiceRequest) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, req *common_models.ServiceRequest) error
	Get(ctx context.Context, id string) (*common_models.ServiceRequest, error)
	FindByClientAndService(ctx context.Context, clientEmail, serviceName string) ([]common_models.ServiceRequest, error)
	FindRenewalsDue(ctx context.Context, before time.Time) ([]common_models.ServiceRequest, error)
	MarkReminderSent(ctx context.Context, id primitive.ObjectID, at time.Time) error
	List(ctx context.Context, limit, offset int64) ([]common_models.ServiceRequest, error)
	EnsureIndexes(ctx context.Context) error
}

type ServiceRequestRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewServiceRequestRepository(mongodb *database.MongodbDB) ServiceRequestRepository {
	return &ServiceRequestRepositoryImpl{
		Collection: mongodb.DB.Collection("service_requests"),
	}
}

func (r *ServiceRequestRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "client_email", Value: 1}, {Key: "service_name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *ServiceRequestRepositoryImpl) Create(ctx context.Context, req *common_models.ServiceRequest) (primitive.ObjectID, error) {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	if tenantID, ok := ctx.Value(common_models.TenantIDKey).(string); ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			req.TenantID = oid
		}
	}
	if req.Status == "" {
		req.Status = "open"
	}
	if req.RequestedOn.IsZero() {
		req.RequestedOn = time.Now()
	}
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt

	_, err := r.Collection.InsertOne(ctx, req)
	if err != nil {
		return primitive.NilObjectID, database.WrapWriteError(err)
	}
	return req.ID, nil
}

func (r *ServiceRequestRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, req *common_models.ServiceRequest) error {
	req.UpdatedAt = time.Now()

	update := bson.M{
		"priority":     req.Priority,
		"status":       req.Status,
		"notes":        req.Notes,
		"requested_on": req.RequestedOn,
		"renewal_at":   req.RenewalAt,
		"updated_at":   req.UpdatedAt,
	}

	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return database.WrapWriteError(err)
}

func (r *ServiceRequestRepositoryImpl) Get(ctx context.Context, id string) (*common_models.ServiceRequest, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var req common_models.ServiceRequest
	if err := r.Collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *ServiceRequestRepositoryImpl) FindByClientAndService(ctx context.Context, clientEmail, serviceName string) ([]common_models.ServiceRequest, error) {
	query := bson.M{
		"client_email": clientEmail,
		"service_name": serviceName,
		"status":       bson.M{"$ne": "cancelled"},
	}
	if tenantID, ok := ctx.Value(common_models.TenantIDKey).(string); ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			query["tenant_id"] = oid
		}
	}

	cursor, err := r.Collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	var reqs []common_models.ServiceRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// FindRenewalsDue returns open requests whose renewal date falls before the
// cutoff and which have not had a reminder sent for the current cycle.
func (r *ServiceRequestRepositoryImpl) FindRenewalsDue(ctx context.Context, before time.Time) ([]common_models.ServiceRequest, error) {
	query := bson.M{
		"renewal_at": bson.M{"$ne": nil, "$lte": before},
		"status":     bson.M{"$in": []string{"open", "in_progress", "completed"}},
		"$or": []bson.M{
			{"reminder_sent_at": nil},
			{"$expr": bson.M{"$lt": []string{"$reminder_sent_at", "$renewal_at"}}},
		},
	}

	cursor, err := r.Collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	var reqs []common_models.ServiceRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *ServiceRequestRepositoryImpl) MarkReminderSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"reminder_sent_at": at}})
	return err
}

func (r *ServiceRequestRepositoryImpl) List(ctx context.Context, limit, offset int64) ([]common_models.ServiceRequest, error) {
	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"created_at": -1})

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
	var reqs []common_models.ServiceRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}
