package priceservice

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	priceauth "github.com/sban26/matchshard/internal/priceservice/auth"
)

// stockPricesResponse is the GET /stockPrices payload.
type stockPricesResponse struct {
	Success bool         `json:"success"`
	Data    []StockPrice `json:"data"`
}

// rateLimiter builds the teacher's 100-requests-per-minute, per-IP limiter
// (internal/api/middleware/security.go's SecurityMiddleware.RateLimiter).
func rateLimiter() gin.HandlerFunc {
	rate := limiter.Rate{Period: time.Minute, Limit: 100}
	instance := limiter.New(memory.NewStore(), rate)

	return func(c *gin.Context) {
		lctx, err := instance.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.AbortWithStatusJSON(500, gin.H{"success": false, "data": gin.H{"error": "internal error"}})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			c.AbortWithStatusJSON(429, gin.H{"success": false, "data": gin.H{"error": "rate limit exceeded"}})
			return
		}
		c.Next()
	}
}

// NewRouter builds the price cache's HTTP surface: a single authenticated,
// rate-limited GET /stockPrices route (spec.md §6).
func NewRouter(store *Store, jwtSecret string, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/stockPrices", rateLimiter(), priceauth.Middleware(jwtSecret), func(c *gin.Context) {
		prices := store.All()

		// Sort by stock_name descending, case-insensitive
		// (original_source's get_stock_prices.rs).
		sort.Slice(prices, func(i, j int) bool {
			return strings.ToUpper(prices[i].StockName) > strings.ToUpper(prices[j].StockName)
		})

		c.JSON(200, stockPricesResponse{Success: true, Data: prices})
	})

	return r
}
