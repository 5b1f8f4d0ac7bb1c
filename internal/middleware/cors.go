package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the listed browser origins. A "*" entry allows any origin; the
// request origin is echoed back so credentials keep working.
func CORS(allowed []string) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(allowed))
	allowAny := false
	for _, o := range allowed {
		if o == "*" {
			allowAny = true
		}
		origins[strings.TrimRight(o, "/")] = struct{}{}
	}
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			_, ok := origins[origin]
			return ok || allowAny
		},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Firebase-AppCheck", HeaderRequestID},
		ExposeHeaders:    []string{HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
