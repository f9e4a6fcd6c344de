package usecase

import (
	"context"

	"shoecatalog/internal/domain/model"
	repo "shoecatalog/internal/repository"
)

// 管理者向けの監査ログ参照
type AuditLogUsecase struct {
	auditLogs repo.AuditLogRepository
}

// DI
func NewAuditLogUsecase(auditLogs repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{auditLogs: auditLogs}
}

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type AuditLogListOutput struct {
	Items  []model.AuditLog `json:"items"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// List は条件に合う監査ログを新しい順に返す。0件でもエラーにしない。
func (u *AuditLogUsecase) List(ctx context.Context, filter repo.AuditLogFilter) (AuditLogListOutput, error) {
	if filter.Limit <= 0 || filter.Limit > maxAuditLimit {
		filter.Limit = defaultAuditLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, err := u.auditLogs.List(ctx, filter)
	if err != nil {
		return AuditLogListOutput{}, err
	}
	if items == nil {
		items = []model.AuditLog{}
	}
	return AuditLogListOutput{Items: items, Limit: filter.Limit, Offset: filter.Offset}, nil
}
