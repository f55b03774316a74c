package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/sessions"
	"github.com/gravitlabs/storefront/config"
	"github.com/gravitlabs/storefront/internal/domain"
	"github.com/gravitlabs/storefront/internal/webserver"
	"github.com/gravitlabs/storefront/pkg/common"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var webConfig *config.WebConfig

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// sessionName is the cookie session carrying the logged-in operator
// identity for the admin UI shell; API calls authenticate with the JWT.
const sessionName = "storefront"

// registerAuthRoutes registers the login flow. It is public; every
// /api route requires the token login issues.
func registerAuthRoutes() {
	webserver.PubPOST("/auth/login", login)
	webserver.PubPOST("/auth/logout", logout)
	webserver.PubGET("/auth/session", currentSession)
}

// SetWebConfig hands the jwt secret and ttl to the login handler.
func SetWebConfig(cfg *config.WebConfig) {
	webConfig = cfg
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials", nil)
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required", nil)
	}

	var opr domain.SysOpr
	if err := GetDB(c).Where("username = ?", payload.Username).First(&opr).Error; err != nil {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	}
	if opr.Status != common.ENABLED {
		return fail(c, http.StatusUnauthorized, "ACCOUNT_DISABLED", "Account is disabled", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(opr.Password), []byte(payload.Password)); err != nil {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	}

	ttl := webConfig.JwtTTL
	if ttl <= 0 {
		ttl = 86400
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":      opr.ID,
		"username": opr.Username,
		"level":    opr.Level,
		"exp":      time.Now().Add(time.Duration(ttl) * time.Second).Unix(),
	})
	signed, err := token.SignedString([]byte(webConfig.Secret))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to sign token", err.Error())
	}

	GetDB(c).Model(&domain.SysOpr{}).Where("id = ?", opr.ID).Update("last_login", time.Now())

	if sess, err := session.Get(sessionName, c); err == nil {
		sess.Options = &sessions.Options{Path: "/", MaxAge: int(ttl), HttpOnly: true}
		sess.Values["uid"] = opr.ID
		sess.Values["username"] = opr.Username
		sess.Values["level"] = opr.Level
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			zap.L().Warn("failed to save login session", zap.Error(err))
		}
	}

	zap.L().Info("operator login", zap.String("username", opr.Username))

	return ok(c, map[string]interface{}{
		"token":    signed,
		"username": opr.Username,
		"level":    opr.Level,
	})
}

// currentSession reports who the cookie session belongs to, for the
// admin UI shell to restore state without re-submitting credentials.
func currentSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil || sess.IsNew {
		return fail(c, http.StatusUnauthorized, "NO_SESSION", "Not logged in", nil)
	}
	username, _ := sess.Values["username"].(string)
	if username == "" {
		return fail(c, http.StatusUnauthorized, "NO_SESSION", "Not logged in", nil)
	}
	level, _ := sess.Values["level"].(string)
	return ok(c, map[string]interface{}{
		"username": username,
		"level":    level,
	})
}

func logout(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err == nil {
		sess.Options = &sessions.Options{Path: "/", MaxAge: -1}
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			zap.L().Warn("failed to clear session", zap.Error(err))
		}
	}
	return ok(c, nil)
}
