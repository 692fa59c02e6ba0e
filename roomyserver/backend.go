package roomyserver

import (
	"fmt"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/castaneai/roomy"
	"github.com/castaneai/roomy/roomymem"
	"github.com/castaneai/roomy/roomyredis"
)

// Backend creates the stores of one service, in memory or in Redis.
type Backend struct {
	conf  StoreConfig
	redis rueidis.Client
	mr    *miniredis.Miniredis
}

func OpenBackend(conf StoreConfig, logger *zap.Logger) (*Backend, error) {
	b := &Backend{conf: conf}
	switch conf.Backend {
	case BackendMemory:
		return b, nil
	case BackendRedis:
	default:
		return nil, fmt.Errorf("unknown backend: %q", conf.Backend)
	}

	redisConf := rueidis.ClientOption{
		InitAddress:  []string{conf.RedisAddr},
		DisableCache: true,
	}
	if conf.RedisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to run miniredis: %w", err)
		}
		logger.Warn("REDIS_ADDR is empty, using an embedded miniredis", zap.String("addr", mr.Addr()))
		b.mr = mr
		redisConf.InitAddress = []string{mr.Addr()}
	}
	client, err := rueidis.NewClient(redisConf)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	b.redis = client
	return b, nil
}

func (b *Backend) RoomStore(policy roomy.SlotPolicy) roomy.RoomStore {
	if b.redis != nil {
		return roomyredis.NewRoomStore(b.conf.RedisKeyPrefix, b.redis, roomyredis.WithSlotPolicy(policy))
	}
	return roomymem.NewRoomStore(roomymem.WithSlotPolicy(policy))
}

func (b *Backend) ActivityRegistry() roomy.ActivityRegistry {
	if b.redis != nil {
		return roomyredis.NewActivityRegistry(b.conf.RedisKeyPrefix, b.redis)
	}
	return roomymem.NewActivityRegistry()
}

func (b *Backend) ReservationStore() roomy.ReservationStore {
	if b.redis != nil {
		return roomyredis.NewReservationStore(b.conf.RedisKeyPrefix, b.redis)
	}
	return roomymem.NewReservationStore()
}

func (b *Backend) Close() {
	if b.redis != nil {
		b.redis.Close()
	}
	if b.mr != nil {
		b.mr.Close()
	}
}
