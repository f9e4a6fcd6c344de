package handler_test

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productDTO struct {
	ID          int64    `json:"id"`
	Version     int      `json:"version"`
	ArticleCode string   `json:"article_code"`
	Rating      int      `json:"rating"`
	Category    *string  `json:"category"`
	Price       string   `json:"price"`
	Available   bool     `json:"available"`
	ReleaseDate *string  `json:"release_date"`
	Tags        []string `json:"tags"`
	Model       *struct {
		Label string `json:"label"`
	} `json:"model"`
	Images []struct {
		Caption string `json:"caption"`
	} `json:"images"`
}

type productPage struct {
	Content []productDTO `json:"content"`
	Page    struct {
		Number        int   `json:"number"`
		Size          int   `json:"size"`
		TotalElements int64 `json:"totalElements"`
	} `json:"page"`
}

func createBody(code, label string, tags ...string) map[string]interface{} {
	if tags == nil {
		tags = []string{}
	}
	return map[string]interface{}{
		"article_code": code,
		"rating":       4,
		"category":     "sneaker",
		"price":        129.9,
		"discount":     0.1,
		"available":    true,
		"release_date": "2024-03-01",
		"tags":         tags,
		"model":        map[string]interface{}{"label": label},
		"images": []map[string]interface{}{
			{"caption": "front", "content_type": "img/png"},
		},
	}
}

// 作成してIDを返す
func (a *testApp) create(t *testing.T, body map[string]interface{}) int64 {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/rest", adminToken(t), body, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/rest/"), loc)
	id, err := strconv.ParseInt(strings.TrimPrefix(loc, "/rest/"), 10, 64)
	require.NoError(t, err)
	return id
}

func TestProduct_CreateAndRead(t *testing.T) {
	app := newTestApp(t)
	id := app.create(t, createBody("SH-1", "Air Runner", "SPORT"))

	assert.Equal(t, []string{"New shoe " + strconv.FormatInt(id, 10)}, app.sender.subjects)

	rec := app.do(t, http.MethodGet, "/rest/"+strconv.FormatInt(id, 10), "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"0"`, rec.Header().Get("ETag"))

	p := mustDecode[productDTO](t, rec)
	assert.Equal(t, "SH-1", p.ArticleCode)
	require.NotNil(t, p.Category)
	assert.Equal(t, "SNEAKER", *p.Category)
	assert.Equal(t, "129.9", p.Price)
	assert.Equal(t, []string{"SPORT"}, p.Tags)
	require.NotNil(t, p.Model)
	assert.Equal(t, "Air Runner", p.Model.Label)
	require.Len(t, p.Images, 1)
	assert.Equal(t, "front", p.Images[0].Caption)

	//同じバージョンを持っていれば304
	rec = app.do(t, http.MethodGet, "/rest/"+strconv.FormatInt(id, 10), "", nil, map[string]string{"If-None-Match": `"0"`})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestProduct_GetByID_Errors(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/rest/999", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", mustDecode[ErrorResponse](t, rec).Error)

	rec = app.do(t, http.MethodGet, "/rest/abc", "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProduct_Create_Rejected(t *testing.T) {
	app := newTestApp(t)
	app.create(t, createBody("SH-1", "A"))

	badRating := createBody("SH-2", "A")
	badRating["rating"] = 6
	badCategory := createBody("SH-3", "A")
	badCategory["category"] = "slipper"
	badDiscount := createBody("SH-4", "A")
	badDiscount["discount"] = 1.5
	noModel := createBody("SH-5", "A")
	delete(noModel, "model")
	badTag := createBody("SH-6", "A", "RETRO")

	tests := []struct {
		name string
		body map[string]interface{}
		want string
	}{
		{"duplicate code", createBody("SH-1", "B"), "article code already exists"},
		{"rating", badRating, "rating: max"},
		{"category", badCategory, "category: oneof"},
		{"discount", badDiscount, "discount: range"},
		{"model", noModel, "model: required"},
		{"tag", badTag, "tags[0]: oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodPost, "/rest", adminToken(t), tt.body, nil)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, tt.want, mustDecode[ErrorResponse](t, rec).Error)
		})
	}

	//通知は最初の1件だけ
	assert.Len(t, app.sender.subjects, 1)
}

func TestProduct_WriteRoutesRequireAdmin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/rest", "", createBody("SH-1", "A"), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodDelete, "/rest/1", token(t, 2, "USER"), nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin only", mustDecode[ErrorResponse](t, rec).Error)
}

func TestProduct_Update(t *testing.T) {
	app := newTestApp(t)
	id := app.create(t, createBody("SH-1", "A", "SPORT"))
	path := "/rest/" + strconv.FormatInt(id, 10)

	update := map[string]interface{}{
		"rating":    5,
		"category":  "BOOT",
		"price":     "99.00",
		"discount":  0,
		"available": false,
		"tags":      []string{"VINTAGE"},
	}

	//If-Matchなし => 428
	rec := app.do(t, http.MethodPut, path, adminToken(t), update, nil)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)

	//書式違い => 412
	rec = app.do(t, http.MethodPut, path, adminToken(t), update, map[string]string{"If-Match": "0"})
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Equal(t, "invalid version", mustDecode[ErrorResponse](t, rec).Error)

	rec = app.do(t, http.MethodPut, path, adminToken(t), update, map[string]string{"If-Match": `"0"`})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, `"1"`, rec.Header().Get("ETag"))

	//古いバージョン => 412
	rec = app.do(t, http.MethodPut, path, adminToken(t), update, map[string]string{"If-Match": `"0"`})
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Equal(t, "version outdated", mustDecode[ErrorResponse](t, rec).Error)

	rec = app.do(t, http.MethodGet, path, "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := mustDecode[productDTO](t, rec)
	assert.Equal(t, 1, p.Version)
	assert.Equal(t, 5, p.Rating)
	assert.Equal(t, "99", p.Price)
	assert.Equal(t, []string{"VINTAGE"}, p.Tags)
	assert.Nil(t, p.ReleaseDate)
	assert.Equal(t, "SH-1", p.ArticleCode)

	rec = app.do(t, http.MethodPut, "/rest/999", adminToken(t), update, map[string]string{"If-Match": `"0"`})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProduct_Search(t *testing.T) {
	app := newTestApp(t)

	//空のDBでも条件なしの一覧は200
	rec := app.do(t, http.MethodGet, "/rest", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	empty := mustDecode[productPage](t, rec)
	assert.Empty(t, empty.Content)
	assert.Equal(t, 5, empty.Page.Size)

	app.create(t, createBody("SH-1", "Air Runner", "SPORT"))
	app.create(t, createBody("SH-2", "Desert Boot", "VINTAGE"))
	app.create(t, createBody("SH-3", "Trail Runner"))

	rec = app.do(t, http.MethodGet, "/rest?sport=true", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := mustDecode[productPage](t, rec)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "SH-1", page.Content[0].ArticleCode)
	//totalは絞り込み前の件数
	assert.Equal(t, int64(3), page.Page.TotalElements)

	rec = app.do(t, http.MethodGet, "/rest?model=runner&page=2&size=1", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page = mustDecode[productPage](t, rec)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "SH-3", page.Content[0].ArticleCode)
	assert.Equal(t, 1, page.Page.Number)
	assert.Equal(t, 1, page.Page.Size)

	for _, q := range []string{"?color=red", "?category=slipper", "?model=sandal", "?model=runner&size=500"} {
		rec = app.do(t, http.MethodGet, "/rest"+q, "", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, q)
	}
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestProduct_FileUploadAndDownload(t *testing.T) {
	app := newTestApp(t)
	id := app.create(t, createBody("SH-1", "A"))
	sid := strconv.FormatInt(id, 10)

	rec := app.do(t, http.MethodGet, "/rest/file/"+sid, "", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.upload(t, "/rest/"+sid, adminToken(t), "old.txt", []byte("hello"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.upload(t, "/rest/"+sid, adminToken(t), "shoe.png", pngBytes)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/rest/file/"+sid, "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "shoe.png")
	assert.Equal(t, pngBytes, rec.Body.Bytes())

	rec = app.upload(t, "/rest/999", adminToken(t), "a.png", pngBytes)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProduct_FileDownload_EscapesFilename(t *testing.T) {
	app := newTestApp(t)
	id := app.create(t, createBody("SH-1", "A"))
	sid := strconv.FormatInt(id, 10)

	for _, name := range []string{`my "best" shoe.png`, "靴.png"} {
		rec := app.upload(t, "/rest/"+sid, adminToken(t), name, pngBytes)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = app.do(t, http.MethodGet, "/rest/file/"+sid, "", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
		require.NoError(t, err, name)
		assert.Equal(t, "attachment", disposition)
		assert.Equal(t, name, params["filename"])
	}
}

func TestProduct_Delete(t *testing.T) {
	app := newTestApp(t)
	id := app.create(t, createBody("SH-1", "A"))
	path := "/rest/" + strconv.FormatInt(id, 10)

	rec := app.do(t, http.MethodDelete, path, adminToken(t), nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(t, http.MethodGet, path, "", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	//無いIDの削除も204
	rec = app.do(t, http.MethodDelete, path, adminToken(t), nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminAuditLogs(t *testing.T) {
	app := newTestApp(t)
	id := app.create(t, createBody("SH-1", "A"))
	app.do(t, http.MethodDelete, "/rest/"+strconv.FormatInt(id, 10), token(t, 9, "ADMIN"), nil, nil)

	rec := app.do(t, http.MethodGet, "/admin/audit-logs?resource_type=product", adminToken(t), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	out := mustDecode[struct {
		Items []struct {
			ActorUserID int64  `json:"actor_user_id"`
			Action      string `json:"action"`
			ResourceID  int64  `json:"resource_id"`
		} `json:"items"`
	}](t, rec)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "DELETE_PRODUCT", out.Items[0].Action)
	assert.Equal(t, int64(9), out.Items[0].ActorUserID)
	assert.Equal(t, "CREATE_PRODUCT", out.Items[1].Action)
	assert.Equal(t, id, out.Items[1].ResourceID)

	rec = app.do(t, http.MethodGet, "/admin/audit-logs?limit=x", adminToken(t), nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
