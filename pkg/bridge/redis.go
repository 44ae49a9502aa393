package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/vantage-net/vantage/pkg/util"
)

// redisMessage is the envelope published for every Update when a Redis
// mirror is attached.
type redisMessage struct {
	Kind       string `json:"kind"`
	Collection string `json:"collection,omitempty"`
	Data       string `json:"data,omitempty"`
	DeviceName string `json:"device_name,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Publisher is the slice of *redis.Client's API AttachRedis needs --
// narrow enough that tests can substitute a fake without a live Redis
// server. *redis.Client satisfies this interface as-is.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// AttachRedis additively mirrors every Update onto Redis pub/sub under
// "<channelPrefix>:<kind>" (and, for stateChanged, also
// "<channelPrefix>:<kind>:<collection>"), for external dashboards or a
// secondary instance that doesn't want to drive the SSH session itself.
// This runs alongside Updates(), never replacing it -- closing the bridge
// stops both.
func AttachRedis(ctx context.Context, b *Bridge, rdb Publisher, channelPrefix string) {
	go func() {
		for u := range b.Updates() {
			msg := redisMessage{
				Kind:       u.Kind,
				Collection: u.Collection,
				Data:       u.JSON,
				DeviceName: u.DeviceName,
				Status:     u.Status,
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			channel := fmt.Sprintf("%s:%s", channelPrefix, u.Kind)
			if err := rdb.Publish(ctx, channel, payload).Err(); err != nil {
				util.WithField("channel", channel).Warnf("redis publish failed: %v", err)
				continue
			}
			if u.Kind == "stateChanged" && u.Collection != "" {
				collChannel := fmt.Sprintf("%s:%s:%s", channelPrefix, u.Kind, u.Collection)
				rdb.Publish(ctx, collChannel, payload)
			}
		}
	}()
}
