package audit

import (
	"context"
	"time"

	common_models "clientdesk/internal/common/models"
	"clientdesk/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The system actor records changes made outside a user session, such as
// scheduled reminder scans.
const systemActorID = "system"

// UserFinder resolves actor IDs to users for display. The user repository
// satisfies it.
type UserFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error)
}

// ListFilter narrows an audit log listing. Zero values match everything.
// Module is one of the audited areas ("user", "client", "service_request",
// or an import kind).
type ListFilter struct {
	Module   string
	RecordID string
	Action   common_models.AuditAction
}

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filter ListFilter, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo     AuditRepository
	UserRepo UserFinder
}

func NewAuditService(repo AuditRepository, userRepo UserFinder) AuditService {
	return &AuditServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
	}
}

// LogChange appends one audit entry. The actor comes from the request
// claims; background jobs with no claims are attributed to the system.
func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	entry := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorFromContext(ctx),
		Changes:   changes,
		Timestamp: time.Now(),
	}

	return s.Repo.Create(ctx, entry)
}

func actorFromContext(ctx context.Context) string {
	if claims, ok := ctx.Value(utils.UserClaimsKey).(*utils.UserClaims); ok && claims.UserID != "" {
		return claims.UserID
	}
	return systemActorID
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filter ListFilter, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	logs, err := s.Repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	s.attachActorNames(ctx, logs)
	return logs, nil
}

// attachActorNames resolves actor IDs to usernames in one batch. A lookup
// failure degrades to placeholder names rather than failing the listing.
func (s *AuditServiceImpl) attachActorNames(ctx context.Context, logs []common_models.AuditLog) {
	seen := make(map[string]struct{}, len(logs))
	ids := make([]string, 0, len(logs))
	for _, entry := range logs {
		if entry.ActorID == systemActorID || entry.ActorID == "" {
			continue
		}
		if _, dup := seen[entry.ActorID]; dup {
			continue
		}
		seen[entry.ActorID] = struct{}{}
		ids = append(ids, entry.ActorID)
	}

	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		if users, err := s.UserRepo.FindByIDs(ctx, ids); err == nil {
			for _, u := range users {
				names[u.ID.Hex()] = u.Username
			}
		}
	}

	for i := range logs {
		switch {
		case logs[i].ActorID == systemActorID || logs[i].ActorID == "":
			logs[i].ActorName = "System"
		case names[logs[i].ActorID] != "":
			logs[i].ActorName = names[logs[i].ActorID]
		default:
			logs[i].ActorName = "Deleted User"
		}
	}
}
