package usecase_test

import (
	"context"

	"shoecatalog/internal/domain/model"
	repo "shoecatalog/internal/repository"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64, withImages bool) (model.Product, error) {
	args := m.Called(ctx, id, withImages)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Find(ctx context.Context, where sq.Sqlizer, offset, limit int) ([]model.Product, error) {
	args := m.Called(ctx, where, offset, limit)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ProductRepoMock) CountByArticleCode(ctx context.Context, articleCode string) (int64, error) {
	args := m.Called(ctx, articleCode)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, id int64, patch repo.ProductPatch, version int) error {
	args := m.Called(ctx, id, patch, version)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type FileRepoMock struct{ mock.Mock }

func (m *FileRepoMock) FindByProductID(ctx context.Context, productID int64) (model.ProductFile, error) {
	args := m.Called(ctx, productID)
	f, _ := args.Get(0).(model.ProductFile)
	return f, args.Error(1)
}

func (m *FileRepoMock) DeleteByProductID(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *FileRepoMock) Create(ctx context.Context, f model.ProductFile) (model.ProductFile, error) {
	args := m.Called(ctx, f)
	created, _ := args.Get(0).(model.ProductFile)
	return created, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type SenderMock struct{ mock.Mock }

func (m *SenderMock) Send(ctx context.Context, subject, body string) error {
	args := m.Called(ctx, subject, body)
	return args.Error(0)
}

// txStub はfnをそのまま実行する。呼ばれた回数を数える。
type txStub struct {
	products *ProductRepoMock
	files    *FileRepoMock
	audits   *AuditRepoMock
	calls    int
}

func (s *txStub) Products() repo.ProductRepository   { return s.products }
func (s *txStub) Files() repo.ProductFileRepository  { return s.files }
func (s *txStub) AuditLogs() repo.AuditLogRepository { return s.audits }

func (s *txStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.calls++
	return fn(s)
}
