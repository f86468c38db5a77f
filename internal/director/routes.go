package director

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *implServer) Handler() http.Handler {
	return s.router
}

func (s *implServer) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", handleHealth)

	v1 := r.Group("/v1")
	v1.Use(s.authenticate)
	v1.POST("/curate", s.handleCurate)
	return r
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *implServer) authenticate(c *gin.Context) {
	if s.token == "" {
		c.Next()
		return
	}
	if c.GetHeader("Authorization") != "Bearer "+s.token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.Next()
}
