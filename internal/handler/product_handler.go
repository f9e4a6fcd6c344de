package handler

import (
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"shoecatalog/internal/domain/model"
	"shoecatalog/internal/query"
	"shoecatalog/internal/usecase"
	"shoecatalog/pkg/logger"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// usecaseのエラーをHTTPステータスに変換する
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, usecase.ErrCodeExists):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "article code already exists"})
	case errors.Is(err, usecase.ErrVersionInvalid):
		return c.JSON(http.StatusPreconditionFailed, ErrorResponse{Error: "invalid version"})
	case errors.Is(err, usecase.ErrVersionOutdated):
		return c.JSON(http.StatusPreconditionFailed, ErrorResponse{Error: "version outdated"})
	}

	//500
	logger.Global().WithContext(c.Request().Context()).Error("request failed",
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err,
	)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// ページ情報（GET /rest のレスポンス）
type PageInfo struct {
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
}

type ProductPage struct {
	Content []model.Product `json:"content"`
	Page    PageInfo        `json:"page"`
}

// /rest の公開API（参照系）
type ProductHandler struct {
	uc *usecase.ProductReadUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductReadUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開ルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/rest", h.list)
	e.GET("/rest/:id", h.detail)
	e.GET("/rest/file/:id", h.file)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	p, err := h.uc.FindByID(c.Request().Context(), id, true)
	if err != nil {
		return writeError(c, err)
	}

	etag := string(usecase.FormatVersionTag(p.Version))
	c.Response().Header().Set("ETag", etag)

	//クライアントが同じバージョンを持っていれば本文なし
	if c.Request().Header.Get("If-None-Match") == etag {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) list(c echo.Context) error {
	qs := c.QueryParams()
	pageable := query.NewPageable(qs.Get("page"), qs.Get("size"))

	out, err := h.uc.Find(c.Request().Context(), searchParams(qs), pageable)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, ProductPage{
		Content: out.Content,
		Page: PageInfo{
			Number:        pageable.Number,
			Size:          pageable.Size,
			TotalElements: out.TotalElements,
		},
	})
}

// page/size以外のクエリはすべて検索条件（同名が複数あれば先頭）
func searchParams(qs url.Values) query.SearchParams {
	params := query.SearchParams{}
	for k, vs := range qs {
		if k == "page" || k == "size" || len(vs) == 0 {
			continue
		}
		params[k] = vs[0]
	}
	return params
}

func (h *ProductHandler) file(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	f, err := h.uc.FindFileByProductID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if f == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	contentType := echo.MIMEOctetStream
	if f.Mimetype != nil {
		contentType = *f.Mimetype
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, attachmentDisposition(f.Filename))
	return c.Blob(http.StatusOK, contentType, f.Data)
}

// ファイル名の " や非ASCIIはmimeの規則でエスケープする
func attachmentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
