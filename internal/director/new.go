package director

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/storycut/internal/curator"
	"github.com/nguyentantai21042004/storycut/internal/logger"
)

type implServer struct {
	reasoner curator.Reasoner
	quota    Quota
	token    string
	limit    int64
	logger   logger.Logger
	now      func() time.Time
	router   *gin.Engine
}

// New creates the proxy. An empty token disables authentication.
func New(reasoner curator.Reasoner, quota Quota, token string, dailyLimit int64, log logger.Logger) Server {
	s := &implServer{
		reasoner: reasoner,
		quota:    quota,
		token:    token,
		limit:    dailyLimit,
		logger:   log,
		now:      time.Now,
	}
	s.router = s.newRouter()
	return s
}
