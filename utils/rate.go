package utils

import (
	"GoVault/config"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	redeemLimiters   = make(map[string]*ipLimiter)
	redeemLimitersMu sync.Mutex
)

// getRedeemLimiter returns the per-IP limiter, creating it on first sight and
// pruning entries idle for over an hour.
func getRedeemLimiter(ip string) *rate.Limiter {
	redeemLimitersMu.Lock()
	defer redeemLimitersMu.Unlock()

	now := time.Now()
	if len(redeemLimiters) > 10000 {
		for key, entry := range redeemLimiters {
			if now.Sub(entry.lastSeen) > time.Hour {
				delete(redeemLimiters, key)
			}
		}
	}

	entry, ok := redeemLimiters[ip]
	if !ok {
		perSecond := config.AppConfig.RedeemRatePerSecond
		burst := config.AppConfig.RedeemRateBurst
		if burst <= 0 {
			burst = 1
		}
		var limiter *rate.Limiter
		if perSecond <= 0 {
			limiter = rate.NewLimiter(rate.Inf, burst)
		} else {
			limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
		entry = &ipLimiter{limiter: limiter}
		redeemLimiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// RedeemRateMiddleware throttles the public share endpoints per client IP so
// password-protected links cannot be brute forced.
func RedeemRateMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !getRedeemLimiter(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"msg": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
