package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"shoecatalog/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // int64
	CtxUserRoleKey = "user_role" // string
)

// 管理者ロール。更新系のAPIはこのロールだけが使える。
const RoleAdmin = "ADMIN"

var errUnauthorized = errors.New("unauthorized")

// principal はトークンから取り出した利用者
type principal struct {
	UserID int64
	Role   string
}

// bearerAuth用のJWT検証ミドルウェア（HS256のみ）。
// トークンの発行はこのサービスの外で行う。subとroleが必須。
func AuthJWT(cfg config.AuthConfig) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c.Request())
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			p, err := parsePrincipal(raw, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, p.UserID)
			c.Set(CtxUserRoleKey, p.Role)
			return next(c)
		}
	}
}

// "Authorization: Bearer <token>" からtokenを抜く
func bearerToken(r *http.Request) (string, error) {
	authz := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errUnauthorized
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errUnauthorized
	}
	return token, nil
}

// 署名・期限を検証してsub/roleを取り出す
func parsePrincipal(raw string, secret []byte) (principal, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return principal{}, errUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return principal{}, errUnauthorized
	}

	userID, err := parseUserID(claims["sub"])
	if err != nil || userID <= 0 {
		return principal{}, errUnauthorized
	}

	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return principal{}, errUnauthorized
	}

	return principal{UserID: userID, Role: strings.ToUpper(role)}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// subは数値でも文字列でもよい
func parseUserID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}
