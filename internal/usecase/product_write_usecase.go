package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shoecatalog/internal/domain/model"
	"shoecatalog/internal/notify"
	repo "shoecatalog/internal/repository"
	"shoecatalog/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
)

type ProductWriteUsecase struct {
	tx       repo.TransactionManager
	products repo.ProductRepository
	reader   *ProductReadUsecase
	sender   notify.Sender
	log      *logger.Logger
}

// DI
func NewProductWriteUsecase(
	tx repo.TransactionManager,
	products repo.ProductRepository,
	reader *ProductReadUsecase,
	sender notify.Sender,
	log *logger.Logger,
) *ProductWriteUsecase {
	return &ProductWriteUsecase{
		tx:       tx,
		products: products,
		reader:   reader,
		sender:   sender,
		log:      log.Named("product"),
	}
}

// Create は商品をmodel/imagesごと1トランザクションで登録し、新しいIDを返す。
// 登録後の通知は失敗しても登録自体は成功扱い。
func (u *ProductWriteUsecase) Create(ctx context.Context, p model.Product) (int64, error) {
	//DBのunique制約とは別に事前に重複チェック
	n, err := u.products.CountByArticleCode(ctx, p.ArticleCode)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, fmt.Errorf("article code %q: %w", p.ArticleCode, ErrCodeExists)
	}

	p.ID = 0
	p.Version = 0

	var created model.Product
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Products().Create(ctx, p)
		if err != nil {
			return err
		}
		created = c
		return r.AuditLogs().Create(ctx, newAuditLog(ctx, model.AuditActionCreateProduct, model.AuditResourceProduct, c.ID, nil, c))
	})
	if err != nil {
		return 0, err
	}

	u.log.WithContext(ctx).Info("product created", "id", created.ID, "article_code", created.ArticleCode)
	u.notifyCreated(ctx, created)
	return created.ID, nil
}

func (u *ProductWriteUsecase) notifyCreated(ctx context.Context, p model.Product) {
	label := ""
	if p.Model != nil {
		label = p.Model.Label
	}
	subject := fmt.Sprintf("New shoe %d", p.ID)
	body := fmt.Sprintf("Shoe with model %s created", label)

	//コミット済みなのでリクエストの切断では止めない（送信側のtimeoutで打ち切る）
	ctx = context.WithoutCancel(ctx)
	if err := u.sender.Send(ctx, subject, body); err != nil {
		u.log.WithContext(ctx).Warn("notification failed", "id", p.ID, "error", err)
	}
}

// AddFile は添付ファイルを差し替える（既存を削除してから登録）。
func (u *ProductWriteUsecase) AddFile(ctx context.Context, id int64, data []byte, filename string, size int64) (model.ProductFile, error) {
	var created model.ProductFile
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Products().FindByID(ctx, id, false); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("product %d: %w", id, ErrNotFound)
			}
			return err
		}

		if err := r.Files().DeleteByProductID(ctx, id); err != nil {
			return err
		}

		f, err := r.Files().Create(ctx, model.ProductFile{
			Data:      data,
			Filename:  filename,
			Mimetype:  detectMimetype(data),
			ProductID: id,
		})
		if err != nil {
			return err
		}
		created = f

		return r.AuditLogs().Create(ctx, newAuditLog(ctx, model.AuditActionReplaceFile, model.AuditResourceFile, id, nil, map[string]any{
			"filename": filename,
			"size":     size,
			"mimetype": f.Mimetype,
		}))
	})
	if err != nil {
		return model.ProductFile{}, err
	}

	u.log.WithContext(ctx).Info("file replaced", "id", id, "filename", filename, "size", size)
	return created, nil
}

// 中身から判定できなければnil
func detectMimetype(data []byte) *string {
	m := mimetype.Detect(data)
	if m == nil || m.Is("application/octet-stream") {
		return nil
	}
	s := m.String()
	return &s
}

// Update は楽観ロックで商品を更新し、新しいバージョンを返す。
//
// versionTagは `"<数字>"` 形式。保存済みより小さければErrVersionOutdated。
// 大きい値は受け付ける（比較は < のみ）。
func (u *ProductWriteUsecase) Update(ctx context.Context, id int64, patch repo.ProductPatch, versionTag VersionTag) (int, error) {
	if id <= 0 {
		return 0, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	version, err := ParseVersionTag(versionTag)
	if err != nil {
		return 0, err
	}

	current, err := u.reader.FindByID(ctx, id, false)
	if err != nil {
		return 0, err
	}

	if version < current.Version {
		return 0, fmt.Errorf("product %d: tag %d < stored %d: %w", id, version, current.Version, ErrVersionOutdated)
	}

	newVersion := current.Version + 1
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Products().Update(ctx, id, patch, newVersion); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("product %d: %w", id, ErrNotFound)
			}
			return err
		}
		return r.AuditLogs().Create(ctx, newAuditLog(ctx, model.AuditActionUpdateProduct, model.AuditResourceProduct, id, current, patch))
	})
	if err != nil {
		return 0, err
	}

	u.log.WithContext(ctx).Info("product updated", "id", id, "version", newVersion)
	return newVersion, nil
}

// Delete は商品を削除する。存在しないIDでもエラーにしない。
func (u *ProductWriteUsecase) Delete(ctx context.Context, id int64) error {
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Products().Delete(ctx, id); err != nil {
			return err
		}
		return r.AuditLogs().Create(ctx, newAuditLog(ctx, model.AuditActionDeleteProduct, model.AuditResourceProduct, id, nil, nil))
	})
	if err != nil {
		return err
	}

	u.log.WithContext(ctx).Info("product deleted", "id", id)
	return nil
}

// 「誰が」「何を」「どの対象に」「どう変えたか」
func newAuditLog(ctx context.Context, action model.AuditAction, rt model.AuditResourceType, id int64, before, after any) model.AuditLog {
	return model.AuditLog{
		ActorUserID:  actorFrom(ctx),
		Action:       action,
		ResourceType: rt,
		ResourceID:   id,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(after),
	}
}

func toJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
