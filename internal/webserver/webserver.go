package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gravitlabs/storefront/config"
	"github.com/gravitlabs/storefront/internal/store"
	"github.com/gravitlabs/storefront/pkg/metrics"
	"github.com/gorilla/sessions"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Context keys populated for every request.
const (
	ContextKeyDB  = "db"
	ContextKeyHub = "hub"
)

var server *WebServer

// WebServer wraps the echo instance with a public group and a JWT
// protected admin API group.
type WebServer struct {
	cfg  *config.AppConfig
	root *echo.Echo
	pub  *echo.Group
	api  *echo.Group
}

// jsonSerializer plugs json-iterator into echo.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed JSON body").SetInternal(err)
	}
	return nil
}

// Init builds the web server and registers the shared middleware. Call
// once at startup, before any route registration.
func Init(cfg *config.AppConfig, db *gorm.DB, hub *store.Hub) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}

	e.Use(middleware.Recover())
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(cfg.Web.Secret))))

	// request log + counter
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			metrics.Record(metrics.MetricHTTPRequests, 1)
			zap.L().Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("elapsed", time.Since(start)))
			return err
		}
	})

	// hand the db and the live hub to every handler
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyDB, db)
			c.Set(ContextKeyHub, hub)
			return next(c)
		}
	})

	ws := &WebServer{
		cfg:  cfg,
		root: e,
		pub:  e.Group(""),
		api:  e.Group("/api"),
	}
	ws.api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.Web.Secret),
	}))

	server = ws
	return ws
}

// Start runs the listener until Stop or a listen error.
func (ws *WebServer) Start() error {
	addr := fmt.Sprintf("%s:%d", ws.cfg.Web.Host, ws.cfg.Web.Port)
	zap.L().Info("web server listening", zap.String("addr", addr))
	err := ws.root.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the listener down gracefully.
func (ws *WebServer) Stop(ctx context.Context) error {
	return ws.root.Shutdown(ctx)
}

// Echo exposes the underlying instance, used by tests.
func (ws *WebServer) Echo() *echo.Echo { return ws.root }

// Admin API route registration, JWT protected.

func ApiGET(path string, h echo.HandlerFunc) { server.api.GET(path, h) }

func ApiPOST(path string, h echo.HandlerFunc) { server.api.POST(path, h) }

func ApiPUT(path string, h echo.HandlerFunc) { server.api.PUT(path, h) }

func ApiDELETE(path string, h echo.HandlerFunc) { server.api.DELETE(path, h) }

// Public storefront routes, no auth.

func PubGET(path string, h echo.HandlerFunc) { server.pub.GET(path, h) }

func PubPOST(path string, h echo.HandlerFunc) { server.pub.POST(path, h) }
