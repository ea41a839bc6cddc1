// Package redis connects to Redis with retries and exposes a readiness probe.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	checker := redis.Healthcheck(client)
//
// The client backs session.RedisStore.
package redis
