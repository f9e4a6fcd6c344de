package repository

import (
	"context"

	"shoecatalog/internal/domain/model"
	repo "shoecatalog/internal/repository"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *auditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	where := sq.And{}
	if filter.ActorUserID != nil {
		where = append(where, sq.Eq{"actor_user_id": *filter.ActorUserID})
	}
	if filter.Action != nil {
		where = append(where, sq.Eq{"action": string(*filter.Action)})
	}
	if filter.ResourceType != nil {
		where = append(where, sq.Eq{"resource_type": string(*filter.ResourceType)})
	}
	if filter.ResourceID != nil {
		where = append(where, sq.Eq{"resource_id": *filter.ResourceID})
	}
	if filter.CreatedFrom != nil {
		where = append(where, sq.GtOrEq{"created_at": *filter.CreatedFrom})
	}
	if filter.CreatedTo != nil {
		where = append(where, sq.LtOrEq{"created_at": *filter.CreatedTo})
	}

	q, err := applyWhere(r.db.WithContext(ctx).Model(&model.AuditLog{}), where)
	if err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	//新しい順
	var logs []model.AuditLog
	if err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
