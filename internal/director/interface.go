package director

import (
	"context"
	"net/http"
	"time"
)

// Server is the curation proxy. It keeps model credentials server side and
// meters every client per day.
type Server interface {
	Handler() http.Handler
}

// Quota counts requests per client and day.
type Quota interface {
	// Use records one request and returns the client's count for the day of now.
	Use(ctx context.Context, clientID string, now time.Time) (int64, error)
}
