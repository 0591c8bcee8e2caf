package company

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

type CompanyRepository interface {
	Create(ctx context.Context, company *common_models.Company) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, company *common_models.Company) error
	Get(ctx context.Context, id string) (*common_models.Company, error)
	FindByRegistrationNo(ctx context.Context, regNo string) ([]common_models.Company, error)
	List(ctx context.Context, limit, offset int64) ([]common_models.Company, error)
	EnsureIndexes(ctx context.Context) error
}

type CompanyRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewCompanyRepository(mongodb *database.MongodbDB) CompanyRepository {
	return &CompanyRepositoryImpl{
		Collection: mongodb.DB.Collection("companies"),
	}
}

func (r *CompanyRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "registration_no", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *CompanyRepositoryImpl) Create(ctx context.Context, company *common_models.Company) (primitive.ObjectID, error) {
	if company.ID.IsZero() {
		company.ID = primitive.NewObjectID()
	}
	if tenantID, ok := ctx.Value(common_models.TenantIDKey).(string); ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			company.TenantID = oid
		}
	}
	if company.Status == "" {
		company.Status = "active"
	}
	company.CreatedAt = time.Now()
	company.UpdatedAt = company.CreatedAt

	_, err := r.Collection.InsertOne(ctx, company)
	if err != nil {
		return primitive.NilObjectID, database.WrapWriteError(err)
	}
	return company.ID, nil
}

func (r *CompanyRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, company *common_models.Company) error {
	company.UpdatedAt = time.Now()

	update := bson.M{
		"registration_no": company.RegistrationNo,
		"name":            company.Name,
		"industry":        company.Industry,
		"website":         company.Website,
		"employees":       company.Employees,
		"status":          company.Status,
		"updated_at":      company.UpdatedAt,
	}

	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return database.WrapWriteError(err)
}

func (r *CompanyRepositoryImpl) Get(ctx context.Context, id string) (*common_models.Company, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var company common_models.Company
	if err := r.Collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepositoryImpl) FindByRegistrationNo(ctx context.Context, regNo string) ([]common_models.Company, error) {
	query := bson.M{"registration_no": regNo, "status": bson.M{"$ne": "inactive"}}
	if tenantID, ok := ctx.Value(common_models.TenantIDKey).(string); ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			query["tenant_id"] = oid
		}
	}

	cursor, err := r.Collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	var companies []common_models.Company
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *CompanyRepositoryImpl) List(ctx context.Context, limit, offset int64) ([]common_models.Company, error) {
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
	var companies []common_models.Company
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}
