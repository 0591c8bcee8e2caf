package import_feature

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntityKind identifies one of the importable business objects.
type EntityKind string

const (
	KindClient         EntityKind = "client"
	KindCompany        EntityKind = "company"
	KindService        EntityKind = "service"
	KindServiceRequest EntityKind = "service_request"
)

// ErrUnknownEntityKind is returned when an unregistered kind is requested.
// It is fatal: no row processing starts.
var ErrUnknownEntityKind = errors.New("unknown entity kind")

// ErrorCategory classifies a row-scoped failure.
type ErrorCategory string

const (
	CategoryMissingRequired    ErrorCategory = "missing_required"
	CategoryInvalidType        ErrorCategory = "invalid_type"
	CategoryInvalidEnumValue   ErrorCategory = "invalid_enum_value"
	CategoryAmbiguousMatch     ErrorCategory = "ambiguous_match"
	CategoryDuplicateInFile    ErrorCategory = "duplicate_in_file"
	CategoryUnknownReference   ErrorCategory = "unknown_reference"
	CategoryPersistenceFailure ErrorCategory = "persistence_failure"
)

// ImportError is one row-scoped failure. Column is empty for row-level
// errors. It doubles as an error value so strategies can return it directly.
type ImportError struct {
	Row      int           `json:"row" bson:"row"`
	Column   string        `json:"column,omitempty" bson:"column,omitempty"`
	Category ErrorCategory `json:"category" bson:"category"`
	Message  string        `json:"message" bson:"message"`
}

func (e *ImportError) Error() string {
	return string(e.Category) + ": " + e.Message
}

// RowAction is the terminal outcome of one successfully processed row.
type RowAction string

const (
	RowCreated RowAction = "created"
	RowUpdated RowAction = "updated"
	RowSkipped RowAction = "skipped"
)

// ImportResult summarizes one run. Counts always sum to the number of
// non-empty rows processed; errors keep original row order.
type ImportResult struct {
	Kind    EntityKind    `json:"kind" bson:"kind"`
	Total   int           `json:"total" bson:"total"`
	Created int           `json:"created" bson:"created"`
	Updated int           `json:"updated" bson:"updated"`
	Skipped int           `json:"skipped" bson:"skipped"`
	Failed  int           `json:"failed" bson:"failed"`
	Errors  []ImportError `json:"errors,omitempty" bson:"errors,omitempty"`
}

type ImportStatus string

const (
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// ImportLog is the durable, append-only record of one import run.
type ImportLog struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID      primitive.ObjectID `json:"tenant_id,omitempty" bson:"tenant_id,omitempty"`
	Kind          EntityKind         `json:"kind" bson:"kind"`
	UserID        primitive.ObjectID `json:"user_id" bson:"user_id"`
	FileName      string             `json:"file_name" bson:"file_name"`
	Status        ImportStatus       `json:"status" bson:"status"`
	FailureReason string             `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	Result        ImportResult       `json:"result" bson:"result"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}

// Options tweak a single run. Partial relaxes required-field checks for
// staff-initiated incremental imports; resolution key columns stay required.
type Options struct {
	Partial bool
}
