package server

import (
	"net/http"

	"bookstore/internal/auth"
	"bookstore/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes builds the gin engine and wraps it with the method
// override handler so HTML forms can submit PUT and DELETE.
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogging())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.GetEnvOrDefault("CORS_ORIGIN", "http://localhost:3000")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.LoadHTMLGlob(config.GetEnvOrDefault("TEMPLATES_GLOB", "web/templates/*.html"))
	r.Static("/static", config.GetEnvOrDefault("STATIC_DIR", "web/static"))

	r.GET("/", s.homeHandler)
	r.GET("/health", s.healthHandler)

	// Auth routes carry no guard
	r.GET("/register", s.authHandler.ShowRegister)
	r.POST("/register", s.authHandler.Register)
	r.GET("/login", s.authHandler.ShowLogin)
	r.POST("/login", s.authHandler.Login)
	r.GET("/logout", s.authHandler.Logout)

	// Every book route sits behind the login guard
	booksGroup := r.Group("/books")
	booksGroup.Use(auth.RequireLogin(s.sessions))
	{
		booksGroup.GET("", s.booksHandler.List)
		booksGroup.GET("/add", s.booksHandler.ShowAddForm)
		booksGroup.POST("", s.booksHandler.Create)
		booksGroup.GET("/:id", s.booksHandler.Show)
		booksGroup.GET("/:id/edit", s.booksHandler.ShowEditForm)
		booksGroup.PUT("/:id", s.booksHandler.Update)
		booksGroup.DELETE("/:id", s.booksHandler.Delete)
		booksGroup.POST("/:id/cover-url", s.booksHandler.CoverUploadURL)
	}

	return MethodOverride(r)
}

func (s *Server) homeHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{})
}

func (s *Server) healthHandler(c *gin.Context) {
	response := make(map[string]any)

	response["database"] = s.db.Health()

	sessionHealth := make(map[string]string)
	if err := s.store.Ping(c.Request.Context()); err != nil {
		sessionHealth["status"] = "down"
		sessionHealth["error"] = err.Error()
	} else {
		sessionHealth["status"] = "up"
	}
	response["sessions"] = sessionHealth

	if s.covers != nil {
		coverHealth := make(map[string]string)
		if err := s.covers.Health(c.Request.Context()); err != nil {
			coverHealth["status"] = "down"
			coverHealth["error"] = err.Error()
		} else {
			coverHealth["status"] = "up"
		}
		response["storage"] = coverHealth
	}

	c.JSON(http.StatusOK, response)
}
