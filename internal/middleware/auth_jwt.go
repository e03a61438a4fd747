package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"app/internal/config"
)

const (
	CtxUserIDKey     = "user_id"     // int64
	CtxRawTokenKey   = "raw_token"   // string
	CtxTokenStateKey = "token_state" // TokenState
)

// トークンの状態。期限切れと未提示を区別する（決済リトライ時のエラー分岐に使う）。
type TokenState string

const (
	TokenOK      TokenState = "ok"
	TokenMissing TokenState = "missing"
	TokenExpired TokenState = "expired"
	TokenInvalid TokenState = "invalid"
)

// bearerトークンを検証して結果をcontextに積む。
// ここでは弾かず、エンドポイントごとにどのエラーにするかをHandlerが決める。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(CtxTokenStateKey, TokenMissing)

			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return next(c)
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.Set(CtxTokenStateKey, TokenInvalid)
				return next(c)
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return next(c)
			}

			//JWTをパースして検証する
			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					c.Set(CtxTokenStateKey, TokenExpired)
				} else {
					c.Set(CtxTokenStateKey, TokenInvalid)
				}
				return next(c)
			}
			if token == nil || !token.Valid {
				c.Set(CtxTokenStateKey, TokenInvalid)
				return next(c)
			}

			//claimsを取り出す
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				c.Set(CtxTokenStateKey, TokenInvalid)
				return next(c)
			}

			userID, ok := parseUserID(claims["sub"])
			if !ok {
				c.Set(CtxTokenStateKey, TokenInvalid)
				return next(c)
			}

			c.Set(CtxTokenStateKey, TokenOK)
			c.Set(CtxUserIDKey, userID)
			c.Set(CtxRawTokenKey, rawToken)
			return next(c)
		}
	}
}

func parseUserID(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), t > 0
	case string:
		id, err := strconv.ParseInt(t, 10, 64)
		return id, err == nil && id > 0
	default:
		return 0, false
	}
}
