package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/arvindh25/college-event-backend/utils"
)

// RateLimiter limits general API traffic per client IP.
func RateLimiter() gin.HandlerFunc {
	store := memory.NewStore()
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  100,
	}
	return ginlimiter.NewMiddleware(limiter.New(store, rate))
}

// MarkRateLimiter is a tighter limit for the attendance marking
// endpoints. Backed by Redis so the window holds across replicas;
// falls back to an in-memory store when Redis is unavailable.
func MarkRateLimiter() gin.HandlerFunc {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  20,
	}

	var store limiter.Store
	if client := utils.GetRedis(); client != nil {
		var err error
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix: "ratelimit:mark",
		})
		if err != nil {
			log.Println("⚠️ Redis rate-limit store unavailable, using memory store:", err)
			store = memory.NewStore()
		}
	} else {
		store = memory.NewStore()
	}

	return ginlimiter.NewMiddleware(limiter.New(store, rate))
}
