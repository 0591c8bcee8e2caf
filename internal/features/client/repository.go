package client

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

type ClientRepository interface {
	Create(ctx context.Context, client *common_models.Client) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, client *common_models.Client) error
	Get(ctx context.Context, id string) (*common_models.Client, error)
	FindByEmail(ctx context.Context, email string) ([]common_models.Client, error)
	List(ctx context.Context, limit, offset int64) ([]common_models.Client, error)
	EnsureIndexes(ctx context.Context) error
}

type ClientRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewClientRepository(mongodb *database.MongodbDB) ClientRepository {
	return &ClientRepositoryImpl{
		Collection: mongodb.DB.Collection("clients"),
	}
}

func (r *ClientRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *ClientRepositoryImpl) Create(ctx context.Context, client *common_models.Client) (primitive.ObjectID, error) {
	if client.ID.IsZero() {
		client.ID = primitive.NewObjectID()
	}
	applyTenant(ctx, &client.TenantID)
	if client.Status == "" {
		client.Status = "active"
	}
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt

	_, err := r.Collection.InsertOne(ctx, client)
	if err != nil {
		return primitive.NilObjectID, database.WrapWriteError(err)
	}
	return client.ID, nil
}

func (r *ClientRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, client *common_models.Client) error {
	client.UpdatedAt = time.Now()

	update := bson.M{
		"email":      client.Email,
		"first_name": client.FirstName,
		"last_name":  client.LastName,
		"phone":      client.Phone,
		"company":    client.Company,
		"status":     client.Status,
		"updated_at": client.UpdatedAt,
	}

	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return database.WrapWriteError(err)
}

func (r *ClientRepositoryImpl) Get(ctx context.Context, id string) (*common_models.Client, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var client common_models.Client
	if err := r.Collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&client); err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByEmail matches active clients only; inactive records are invisible
// to import resolution.
func (r *ClientRepositoryImpl) FindByEmail(ctx context.Context, email string) ([]common_models.Client, error) {
	query := bson.M{"email": email, "status": bson.M{"$ne": "inactive"}}
	addTenantFilter(ctx, query)

	cursor, err := r.Collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	var clients []common_models.Client
	if err := cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *ClientRepositoryImpl) List(ctx context.Context, limit, offset int64) ([]common_models.Client, error) {
	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"created_at": -1})

	query := bson.M{}
	addTenantFilter(ctx, query)

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var clients []common_models.Client
	if err := cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func applyTenant(ctx context.Context, target *primitive.ObjectID) {
	tenantID, ok := ctx.Value(common_models.TenantIDKey).(string)
	if ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			*target = oid
		}
	}
}

func addTenantFilter(ctx context.Context, query bson.M) {
	tenantID, ok := ctx.Value(common_models.TenantIDKey).(string)
	if ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			query["tenant_id"] = oid
		}
	}
}
