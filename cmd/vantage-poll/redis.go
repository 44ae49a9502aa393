package main

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/vantage-net/vantage/pkg/bridge"
	"github.com/vantage-net/vantage/pkg/util"
)

// attachRedisMirror dials app.redisAddr and wires it into the bridge's
// optional pub/sub mirror. A dial failure only warns -- the core poll loop
// never depends on Redis being reachable.
func attachRedisMirror(ctx context.Context, b *bridge.Bridge) {
	rdb := redis.NewClient(&redis.Options{Addr: app.redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		util.WithField("redis_addr", app.redisAddr).Warnf("redis mirror unavailable, continuing without it: %v", err)
		return
	}
	bridge.AttachRedis(ctx, b, rdb, app.redisChannelPrefix)
}
