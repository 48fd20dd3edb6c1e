// Package ratelimit limits how often each client may call the card server.
//
// Every key (by default the client IP) gets its own token bucket from
// golang.org/x/time/rate. Buckets unused for longer than the cleanup period
// are dropped.
//
//	limiter, err := ratelimit.New(ratelimit.Config{RequestsPerSecond: 10, BurstSize: 20})
//	if err != nil {
//		return err
//	}
//	router.Use(ratelimit.HTTPMiddleware(limiter, ratelimit.IPKey))
//
// A zero RequestsPerSecond disables limiting; New then returns a limiter that
// admits every request.
package ratelimit
