package webserver

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/talkincode/orderstock/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContextDBKey is the echo context key holding the request database handle
const ContextDBKey = "orderstock_db"

// WebServer wraps the echo instance and the authenticated api group
type WebServer struct {
	root   *echo.Echo
	api    *echo.Group
	public *echo.Group
	config *config.AppConfig
}

var server *WebServer

type apiValidator struct {
	validate *validator.Validate
}

func (v *apiValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// jsonSerializer replaces echo's default encoder with jsoniter
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsoniter.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := jsoniter.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed json body").SetInternal(err)
	}
	return nil
}

// Init builds the web server: jsoniter serializer, payload validator,
// zap request logging and a JWT-guarded /api group. Routes are added
// afterwards through the ApiXXX / PubXXX helpers.
func Init(appConfig *config.AppConfig, db *gorm.DB) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Validator = &apiValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextDBKey, db)
			return next(c)
		}
	})
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Debug("http request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))

	api := e.Group("/api")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(appConfig.Web.Secret),
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/auth/login"
		},
	}))

	server = &WebServer{
		root:   e,
		api:    api,
		public: e.Group(""),
		config: appConfig,
	}
	return server
}

// Instance returns the initialized server
func Instance() *WebServer { return server }

// Start runs the HTTP listener until it fails or is shut down
func (s *WebServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Web.Host, s.config.Web.Port)
	zap.L().Info("starting admin api server", zap.String("listen", addr))
	return s.root.Start(addr)
}

// Echo exposes the underlying echo instance (tests and shutdown)
func (s *WebServer) Echo() *echo.Echo { return s.root }

// ApiGET registers an authenticated GET route under /api
func ApiGET(path string, h echo.HandlerFunc) { server.api.GET(path, h) }

// ApiPOST registers an authenticated POST route under /api
func ApiPOST(path string, h echo.HandlerFunc) { server.api.POST(path, h) }

// ApiPUT registers an authenticated PUT route under /api
func ApiPUT(path string, h echo.HandlerFunc) { server.api.PUT(path, h) }

// ApiDELETE registers an authenticated DELETE route under /api
func ApiDELETE(path string, h echo.HandlerFunc) { server.api.DELETE(path, h) }

// PubGET registers an unauthenticated GET route
func PubGET(path string, h echo.HandlerFunc) { server.public.GET(path, h) }

// PubPOST registers an unauthenticated POST route
func PubPOST(path string, h echo.HandlerFunc) { server.public.POST(path, h) }
