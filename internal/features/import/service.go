package import_feature

import (
	"context"
	"errors"
	"fmt"
	"io"

	common_models "clientdesk/internal/common/models"
	"clientdesk/internal/database"
	"clientdesk/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ImportService interface {
	AvailableKinds(privileged bool) []EntityKind
	KindAllowed(kind EntityKind, privileged bool) bool
	TemplateFor(kind EntityKind) (*ImportTemplate, error)
	Execute(ctx context.Context, file io.Reader, filename string, kind EntityKind, userID primitive.ObjectID, opts Options) (*ImportResult, error)
	GetLog(ctx context.Context, id string) (*ImportLog, error)
	ListLogs(ctx context.Context, kind string, page, limit int64) ([]ImportLog, error)
}

type ImportServiceImpl struct {
	Registry     *TemplateRegistry
	LogRepo      ImportLogRepository
	AuditService audit.AuditService
	Logger       *zap.Logger

	importers map[EntityKind]rowImporter
}

func NewImportService(
	registry *TemplateRegistry,
	logRepo ImportLogRepository,
	auditService audit.AuditService,
	logger *zap.Logger,
	clients ClientStore,
	companies CompanyStore,
	services ServiceStore,
	requests ServiceRequestStore,
) ImportService {
	return &ImportServiceImpl{
		Registry:     registry,
		LogRepo:      logRepo,
		AuditService: auditService,
		Logger:       logger,
		importers: map[EntityKind]rowImporter{
			KindClient:         &clientImporter{store: clients},
			KindCompany:        &companyImporter{store: companies},
			KindService:        &serviceImporter{store: services},
			KindServiceRequest: &serviceRequestImporter{store: requests, clients: clients, services: services},
		},
	}
}

func (s *ImportServiceImpl) AvailableKinds(privileged bool) []EntityKind {
	return s.Registry.AvailableKinds(privileged)
}

func (s *ImportServiceImpl) KindAllowed(kind EntityKind, privileged bool) bool {
	return s.Registry.KindAllowed(kind, privileged)
}

func (s *ImportServiceImpl) TemplateFor(kind EntityKind) (*ImportTemplate, error) {
	return s.Registry.Template(kind)
}

// Execute runs one import: rows are streamed, parsed, resolved, and
// persisted one at a time. Row-scoped failures are recorded and the run
// continues; only infrastructure errors abort the remainder. Every
// non-empty row ends in exactly one of created/updated/skipped/failed.
func (s *ImportServiceImpl) Execute(ctx context.Context, file io.Reader, filename string, kind EntityKind, userID primitive.ObjectID, opts Options) (*ImportResult, error) {
	tmpl, err := s.Registry.Template(kind)
	if err != nil {
		return nil, err
	}
	importer, ok := s.importers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityKind, kind)
	}

	// A bad upload (wrong extension, unreadable archive) is the caller's
	// mistake: reject it before any row processing or log entry.
	source, err := OpenRowSource(file, filename)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	agg := NewAggregator(kind)
	// Resolution keys seen so far in this file; the file is one logical
	// batch, so a repeated key fails the later row.
	seen := make(map[string]int)

	for {
		raw, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, s.failRun(ctx, kind, userID, filename, agg, err)
		}
		if raw.IsEmpty() {
			continue
		}

		row, rowErrs := ParseRow(raw, tmpl, opts.Partial)
		if len(rowErrs) > 0 {
			agg.Fail(rowErrs...)
			continue
		}

		if key, ok := importer.key(row); ok {
			if firstRow, dup := seen[key]; dup {
				agg.Fail(&ImportError{
					Row:      raw.Index,
					Category: CategoryDuplicateInFile,
					Message:  fmt.Sprintf("duplicate of row %d", firstRow),
				})
				continue
			}
			seen[key] = raw.Index
		}

		action, err := importer.process(ctx, row)
		if err != nil {
			var rowErr *ImportError
			if errors.As(err, &rowErr) {
				agg.Fail(rowErr)
				continue
			}
			if errors.Is(err, database.ErrConflict) {
				agg.Fail(&ImportError{
					Row:      raw.Index,
					Category: CategoryPersistenceFailure,
					Message:  err.Error(),
				})
				continue
			}
			return nil, s.failRun(ctx, kind, userID, filename, agg, err)
		}
		agg.Record(action)
	}

	result := agg.Result()

	logEntry := &ImportLog{
		Kind:     kind,
		UserID:   userID,
		FileName: filename,
		Status:   ImportStatusCompleted,
		Result:   *result,
	}
	if err := s.LogRepo.Create(ctx, logEntry); err != nil {
		return nil, fmt.Errorf("failed to persist import log: %w", err)
	}

	s.AuditService.LogChange(ctx, common_models.AuditActionImport, string(kind), logEntry.ID.Hex(), map[string]common_models.Change{
		"result": {New: result},
	})

	s.Logger.Info("import completed",
		zap.String("kind", string(kind)),
		zap.String("file", filename),
		zap.Int("total", result.Total),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}

// failRun records a run-scoped failure in the import log before surfacing
// it. Rows already processed stay persisted; the log carries the partial
// tally for the audit trail.
func (s *ImportServiceImpl) failRun(ctx context.Context, kind EntityKind, userID primitive.ObjectID, filename string, agg *Aggregator, cause error) error {
	logEntry := &ImportLog{
		Kind:          kind,
		UserID:        userID,
		FileName:      filename,
		Status:        ImportStatusFailed,
		FailureReason: cause.Error(),
	}
	if agg != nil {
		logEntry.Result = *agg.Result()
	}

	if err := s.LogRepo.Create(ctx, logEntry); err != nil {
		s.Logger.Error("failed to persist failed import log", zap.Error(err))
	}

	s.Logger.Error("import aborted",
		zap.String("kind", string(kind)),
		zap.String("file", filename),
		zap.Error(cause),
	)

	return fmt.Errorf("import aborted: %w", cause)
}

func (s *ImportServiceImpl) GetLog(ctx context.Context, id string) (*ImportLog, error) {
	return s.LogRepo.Get(ctx, id)
}

func (s *ImportServiceImpl) ListLogs(ctx context.Context, kind string, page, limit int64) ([]ImportLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return s.LogRepo.List(ctx, kind, limit, (page-1)*limit)
}
