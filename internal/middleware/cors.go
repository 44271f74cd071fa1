package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CORSMiddleware allows the browser app served from clientURLs (comma separated) to call the API
// with its session cookie. Without any origin the API is same-origin only.
func CORSMiddleware(clientURLs string, logger *zap.Logger) gin.HandlerFunc {
	var origins []string
	for _, o := range strings.Split(clientURLs, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, strings.TrimSuffix(o, "/"))
		}
	}
	if len(origins) == 0 {
		if logger != nil {
			logger.Warn("CLIENT_URL is not set; cross-origin requests will be rejected by browsers")
		}
		return func(c *gin.Context) { c.Next() }
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
