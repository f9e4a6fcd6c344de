package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shoecatalog/internal/config"
	"shoecatalog/internal/domain/model"
	"shoecatalog/internal/middleware"
	repo "shoecatalog/internal/repository"
	"shoecatalog/internal/usecase"
	"shoecatalog/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ProductModelRequest は商品のモデル（1件）
type ProductModelRequest struct {
	Label string  `json:"label" validate:"required,max=40"`
	Color *string `json:"color" validate:"omitempty,max=40"`
}

type ProductImageRequest struct {
	Caption     string `json:"caption" validate:"max=32"`
	ContentType string `json:"content_type" validate:"required,max=16"`
}

// ProductFields は作成と更新で共通の項目
type ProductFields struct {
	Rating      int             `json:"rating" validate:"min=0,max=5"`
	Category    *string         `json:"category" validate:"omitempty,max=16"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Available   bool            `json:"available"`
	ReleaseDate *string         `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
	Homepage    *string         `json:"homepage" validate:"omitempty,max=64"`
	Tags        []string        `json:"tags" validate:"omitempty,dive,oneof=SPORT VINTAGE STREETWARE"`
}

// POST /rest
type ProductCreateRequest struct {
	ProductFields
	ArticleCode string                `json:"article_code" validate:"required,max=32"`
	Model       ProductModelRequest   `json:"model" validate:"required"`
	Images      []ProductImageRequest `json:"images" validate:"omitempty,dive"`
}

// PUT /rest/:id（article_code / model / imagesは変更不可）
type ProductUpdateRequest struct {
	ProductFields
}

var (
	maxPrice = decimal.New(1000000, 0) // decimal(8,2)
	one      = decimal.New(1, 0)
)

// validatorで表せない項目の検証と変換
func (f ProductFields) resolve() (repo.ProductPatch, error) {
	if f.Price.IsNegative() || f.Price.GreaterThanOrEqual(maxPrice) {
		return repo.ProductPatch{}, errors.New("price: range")
	}
	if f.Discount.IsNegative() || f.Discount.GreaterThanOrEqual(one) {
		return repo.ProductPatch{}, errors.New("discount: range")
	}

	patch := repo.ProductPatch{
		Rating:    f.Rating,
		Price:     f.Price,
		Discount:  f.Discount,
		Available: f.Available,
		Homepage:  f.Homepage,
		Tags:      f.Tags,
	}

	if f.Category != nil {
		c, ok := model.ParseCategory(*f.Category)
		if !ok {
			return repo.ProductPatch{}, errors.New("category: oneof")
		}
		patch.Category = &c
	}

	if f.ReleaseDate != nil {
		t, err := time.Parse("2006-01-02", *f.ReleaseDate)
		if err != nil {
			return repo.ProductPatch{}, errors.New("release_date: datetime")
		}
		d := datatypes.Date(t)
		patch.ReleaseDate = &d
	}

	return patch, nil
}

func (r ProductCreateRequest) toProduct() (model.Product, error) {
	patch, err := r.resolve()
	if err != nil {
		return model.Product{}, err
	}

	images := make([]model.ProductImage, 0, len(r.Images))
	for _, img := range r.Images {
		images = append(images, model.ProductImage{Caption: img.Caption, ContentType: img.ContentType})
	}

	return model.Product{
		ArticleCode: strings.TrimSpace(r.ArticleCode),
		Rating:      patch.Rating,
		Category:    patch.Category,
		Price:       patch.Price,
		Discount:    patch.Discount,
		Available:   patch.Available,
		ReleaseDate: patch.ReleaseDate,
		Homepage:    patch.Homepage,
		Tags:        patch.Tags,
		Model:       &model.ProductModel{Label: r.Model.Label, Color: r.Model.Color},
		Images:      images,
	}, nil
}

// /rest の更新系（管理者のみ）
type AdminProductHandler struct {
	uc *usecase.ProductWriteUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductWriteUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.AuthConfig) {
	admin := e.Group("/rest")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("", h.createProduct)
	admin.PUT("/:id", h.updateProduct)
	admin.POST("/:id", h.uploadFile)
	admin.DELETE("/:id", h.deleteProduct)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: validator.Message(err)})
	}

	p, err := req.toProduct()
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	}

	ctx, ok := actorContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := h.uc.Create(ctx, p)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderLocation, "/rest/"+strconv.FormatInt(id, 10))
	return c.NoContent(http.StatusCreated)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	//If-Matchが無い更新は受け付けない
	versionTag := c.Request().Header.Get("If-Match")
	if versionTag == "" {
		return c.JSON(http.StatusPreconditionRequired, ErrorResponse{Error: "If-Match header required"})
	}

	var req ProductUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: validator.Message(err)})
	}

	patch, err := req.resolve()
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	}

	ctx, ok := actorContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	version, err := h.uc.Update(ctx, id, patch, usecase.VersionTag(versionTag))
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set("ETag", string(usecase.FormatVersionTag(version)))
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminProductHandler) uploadFile(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	header, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no file provided"})
	}
	src, err := header.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid file"})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return writeError(c, err)
	}

	ctx, ok := actorContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	f, err := h.uc.AddFile(ctx, id, data, header.Filename, header.Size)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, f)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	ctx, ok := actorContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
