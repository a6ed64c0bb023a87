package server

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mdouchement/corkboard/internal/database"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/realtime"
	"github.com/mdouchement/corkboard/internal/server/middlewares"
	"github.com/mdouchement/corkboard/internal/server/service"
	"github.com/mdouchement/corkboard/internal/server/session"
	"github.com/sirupsen/logrus"
)

// An IOC is an Iversion Of Control pattern used to init the server package.
type IOC struct {
	Version  string
	Database database.Client
	Logger   *logrus.Logger
	// Hub broadcasts the board changes, realtime is disabled when nil.
	Hub *realtime.Hub
	// JWT params
	SigningKey []byte
	TokenTTL   time.Duration
	// Uploads are disabled when empty.
	UploadsPath string
}

// EchoEngine instantiates the wep server.
func EchoEngine(ctrl IOC) *echo.Echo {
	logger := ctrl.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	engine := echo.New()
	engine.Use(middleware.Recover())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	engine.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/realtime"
		},
	}))

	engine.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${status}] ${method} ${uri} (${bytes_in}) ${latency_human}\n",
		Output: logger.Writer(),
	}))
	engine.Binder = middlewares.NewBinder()
	// Error handler
	engine.HTTPErrorHandler = middlewares.HTTPErrorHandler(logger)

	engine.Pre(middleware.Rewrite(map[string]string{
		"/": "/version",
	}))

	var events service.Publisher
	if ctrl.Hub != nil {
		events = ctrl.Hub
	}

	////////////
	// Router //
	////////////

	sessions := session.NewManager(ctrl.Database, ctrl.SigningKey, ctrl.TokenTTL)

	router := engine.Group("")
	restricted := router.Group("")
	restricted.Use(middlewares.CurrentUser(sessions))

	// generic handlers
	//
	router.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	})

	if ctrl.Hub != nil {
		router.GET("/realtime", echo.WrapHandler(ctrl.Hub))
	}

	//
	// user handlers
	//
	user := &user{
		service: service.NewUserService(ctrl.Database, sessions),
	}
	router.POST("/login", user.Login)
	restricted.GET("/users", user.List)
	restricted.GET("/users/me", user.Me)
	restricted.PATCH("/users/me", user.Update)

	//
	// item handlers
	//
	item := &item{
		service: service.NewItemService(ctrl.Database, events),
	}
	restricted.GET("/items", item.List)
	restricted.POST("/items", item.Create)
	restricted.PATCH("/items/:id", item.Update)
	restricted.DELETE("/items/:id", item.Delete)
	restricted.POST("/items/:id/front", item.BringToFront)
	restricted.POST("/items/:id/back", item.SendToBack)
	restricted.GET("/board/pdf", item.PDF)

	//
	// snapshot handlers
	//
	snapshot := &snapshot{
		service: service.NewSnapshotService(ctrl.Database, events),
	}
	restricted.GET("/snapshots", snapshot.List)
	restricted.POST("/snapshots", snapshot.Capture)
	restricted.GET("/snapshots/:date", snapshot.Show)
	restricted.GET("/snapshots/:date/pdf", snapshot.PDF)

	//
	// menu handlers
	//
	menu := &menu{
		service: service.NewMenuService(ctrl.Database),
	}
	restricted.GET("/menu-entries", menu.List)
	restricted.POST("/menu-entries", menu.Capture)

	//
	// upload handlers
	//
	if ctrl.UploadsPath != "" {
		upload := &upload{
			path: ctrl.UploadsPath,
		}
		restricted.POST("/uploads", upload.Create, middleware.BodyLimit(fmt.Sprintf("%dK", MaxUploadSize/1024+64)))
		router.Static("/uploads", ctrl.UploadsPath)
	}

	return engine
}

// PrintRoutes prints the Echo engin exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%6s %s\n", route.Method, route.Path)
	}
}

func currentUser(c echo.Context) *model.User {
	user, ok := c.Get(middlewares.CurrentUserContextKey).(*model.User)
	if ok {
		return user
	}
	return nil
}
