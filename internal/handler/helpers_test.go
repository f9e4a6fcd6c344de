package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"shoecatalog/internal/config"
	"shoecatalog/internal/handler"
	infradb "shoecatalog/internal/infra/db"
	infra "shoecatalog/internal/infra/repository"
	"shoecatalog/internal/usecase"
	"shoecatalog/internal/validator"
	"shoecatalog/pkg/logger"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

var testAuth = config.AuthConfig{JWTSecret: "test-secret"}

type ErrorResponse struct {
	Error string `json:"error"`
}

// 通知を記録するだけのSender
type recordingSender struct {
	subjects []string
}

func (s *recordingSender) Send(_ context.Context, subject, _ string) error {
	s.subjects = append(s.subjects, subject)
	return nil
}

type testApp struct {
	e      *echo.Echo
	sender *recordingSender
}

// sqlite（インメモリ）上に全部品を組み立てる
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	gormDB, err := infradb.Connect(config.DBConfig{
		Driver:     "sqlite",
		SQLitePath: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infradb.Migrate(gormDB))

	products := infra.NewProductGormRepository(gormDB)
	files := infra.NewProductFileGormRepository(gormDB)
	audits := infra.NewAuditLogGormRepository(gormDB)
	tx := infra.NewTxManagerGorm(gormDB)

	sender := &recordingSender{}
	reader := usecase.NewProductReadUsecase(products, files)
	writer := usecase.NewProductWriteUsecase(tx, products, reader, sender, logger.Nop())

	e := echo.New()
	e.Validator = validator.New()
	handler.NewProductHandler(reader).RegisterRoutes(e)
	handler.NewAdminProductHandler(writer).RegisterRoutes(e, testAuth)
	handler.NewAdminAuditLogHandler(usecase.NewAuditLogUsecase(audits)).RegisterRoutes(e, testAuth)

	return &testApp{e: e, sender: sender}
}

func token(t *testing.T, sub int64, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  9999999999,
	}).SignedString([]byte(testAuth.JWTSecret))
	require.NoError(t, err)
	return s
}

func adminToken(t *testing.T) string {
	return token(t, 1, "ADMIN")
}

func (a *testApp) do(t *testing.T, method, path, bearer string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) upload(t *testing.T, path, bearer, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func mustDecode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
