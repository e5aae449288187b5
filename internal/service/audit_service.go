package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"eventtix/registrar/internal/model"
	"eventtix/registrar/internal/repository"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 500
	auditWriteTimeout = 5 * time.Second
)

type AuditRecord struct {
	AdminID        uint
	Action         model.AuditAction
	Details        map[string]any
	RegistrationID *uint
	IP             string
	UserAgent      string
}

type AuditQuery struct {
	Limit   int
	Offset  int
	Action  string
	AdminID *uint
}

type AuditStats struct {
	Total    int64                       `json:"total"`
	ByAction map[model.AuditAction]int64 `json:"by_action"`
	Last24h  int64                       `json:"last_24h"`
}

type AuditService interface {
	// Record appends an entry. Failures are logged and never returned.
	Record(ctx context.Context, rec AuditRecord)
	List(ctx context.Context, q AuditQuery) ([]repository.AuditEntry, error)
	Stats(ctx context.Context) (*AuditStats, error)
}

type auditService struct {
	repo   repository.AuditLogRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewAuditService(repo repository.AuditLogRepository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger, now: time.Now}
}

func (s *auditService) Record(ctx context.Context, rec AuditRecord) {
	// The triggering request may already be finished; the write must not be cut short by it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	entry := &model.AuditLog{
		AdminID:        rec.AdminID,
		Action:         rec.Action,
		RegistrationID: rec.RegistrationID,
		IPAddress:      optionalString(rec.IP),
		UserAgent:      optionalString(rec.UserAgent),
		CreatedAt:      s.now(),
	}
	if len(rec.Details) > 0 {
		raw, err := json.Marshal(rec.Details)
		if err != nil {
			s.logger.Warn("audit details not serializable", zap.String("action", string(rec.Action)), zap.Error(err))
		} else {
			entry.Details = datatypes.JSON(raw)
		}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log",
			zap.String("action", string(rec.Action)),
			zap.Uint("admin_id", rec.AdminID),
			zap.Error(err),
		)
	}
}

func (s *auditService) List(ctx context.Context, q AuditQuery) ([]repository.AuditEntry, error) {
	if q.Limit == 0 {
		q.Limit = defaultAuditLimit
	}
	if q.Limit < 1 || q.Limit > maxAuditLimit {
		return nil, ErrValidation.withMessage("limit must be between 1 and %d", maxAuditLimit)
	}
	if q.Offset < 0 {
		return nil, ErrValidation.withMessage("offset must not be negative")
	}

	filter := repository.AuditFilter{AdminID: q.AdminID, Limit: q.Limit, Offset: q.Offset}
	if q.Action != "" {
		action := model.AuditAction(q.Action)
		filter.Action = &action
	}
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, dbError(err)
	}
	if entries == nil {
		entries = []repository.AuditEntry{}
	}
	return entries, nil
}

func (s *auditService) Stats(ctx context.Context) (*AuditStats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	byAction, err := s.repo.CountByAction(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	recent, err := s.repo.CountSince(ctx, s.now().Add(-24*time.Hour))
	if err != nil {
		return nil, dbError(err)
	}
	return &AuditStats{Total: total, ByAction: byAction, Last24h: recent}, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ AuditService = (*auditService)(nil)
