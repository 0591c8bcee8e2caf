package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	TypeRenewalReminder NotificationType = "renewal_reminder"
	TypeImportCompleted NotificationType = "import_completed"
)

type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID  primitive.ObjectID `json:"tenant_id,omitempty" bson:"tenant_id,omitempty"`
	ClientID  primitive.ObjectID `json:"client_id,omitempty" bson:"client_id,omitempty"`
	Type      NotificationType   `json:"type" bson:"type"`
	Title     string             `json:"title" bson:"title"`
	Message   string             `json:"message" bson:"message"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
