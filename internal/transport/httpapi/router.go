package httpapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kanon95/user-records/internal/service"
)

// NewRouter builds the gin engine with the /api/users surface. Cross-origin
// requests are accepted from any origin.
func NewRouter(svc *service.UserSvc) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	h := NewUserHandler(svc)
	users := r.Group("/api/users")
	{
		users.GET("", h.List)
		users.POST("", h.Create)
		users.GET("/health", h.Health)
		users.GET("/search/email", h.GetByEmail)
		users.GET("/search/name", h.SearchByName)
		users.GET("/:id", h.GetByID)
		users.PUT("/:id", h.Update)
		users.DELETE("/:id", h.Delete)
	}
	return r
}
