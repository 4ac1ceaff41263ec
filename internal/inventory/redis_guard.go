package inventory

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisGuard is the fast path in front of the durable store: an
// all-or-nothing claim of per-seat Redis keys that rejects overlapping
// holds without a database round trip. The keys carry the hold TTL, so
// a crashed process can never pin a seat in Redis forever. Postgres
// remains the source of truth; the guard is an optimization, not the
// inventory.
type RedisGuard struct {
	redis *redis.Client
}

// NewRedisGuard creates a new Redis hold guard
func NewRedisGuard(redisClient *redis.Client) *RedisGuard {
	return &RedisGuard{
		redis: redisClient,
	}
}

// Lua script for atomic guard acquisition - prevents race conditions
const luaGuardHold = `
-- KEYS[1] = reservation_id
-- ARGV[1] = ttl_seconds
-- ARGV[2..N] = seat guard keys

local reservation_id = KEYS[1]
local ttl = tonumber(ARGV[1])

-- Check that no requested seat is guarded
for i = 2, #ARGV do
    if redis.call("EXISTS", ARGV[i]) == 1 then
        -- Seat is already guarded, return failure with the blocking key
        return {0, ARGV[i]}
    end
end

-- All seats free, guard them atomically
local guard_set = "guard_seats:" .. reservation_id
for i = 2, #ARGV do
    redis.call("SETEX", ARGV[i], ttl, reservation_id)
    redis.call("SADD", guard_set, ARGV[i])
end
redis.call("EXPIRE", guard_set, ttl)

return {1, "success"}
`

// Lua script for atomic guard release
const luaGuardRelease = `
-- KEYS[1] = reservation_id
local reservation_id = KEYS[1]
local guard_set = "guard_seats:" .. reservation_id

local keys = redis.call("SMEMBERS", guard_set)
for i = 1, #keys do
    -- Only drop keys this reservation still owns; a later hold may have
    -- re-claimed the seat after our TTL lapsed.
    if redis.call("GET", keys[i]) == reservation_id then
        redis.call("DEL", keys[i])
    end
end
redis.call("DEL", guard_set)

return {1, #keys}
`

func guardKey(seatID uuid.UUID, travelDate time.Time) string {
	return "seat_guard:" + seatID.String() + ":" + FormatTravelDate(travelDate)
}

// TryHold atomically guards all requested seats or none of them
func (g *RedisGuard) TryHold(ctx context.Context, seatIDs []uuid.UUID, travelDate time.Time, reservationID uuid.UUID, ttl time.Duration) error {
	if g == nil || g.redis == nil {
		return nil
	}

	keys := []string{reservationID.String()}
	args := []interface{}{strconv.Itoa(int(ttl.Seconds()))}
	for _, seatID := range seatIDs {
		args = append(args, guardKey(seatID, travelDate))
	}

	result, err := g.redis.EvalSha(ctx, luaGuardHold, keys, args...).Result()
	if err != nil {
		// If script is not loaded, try to load and execute
		result, err = g.redis.Eval(ctx, luaGuardHold, keys, args...).Result()
		if err != nil {
			return fmt.Errorf("failed to execute guard hold: %w", err)
		}
	}

	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 2 {
		return fmt.Errorf("unexpected result format from guard script")
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return fmt.Errorf("invalid success flag in guard script result")
	}

	if success == 0 {
		blockedKey, _ := resultArray[1].(string)
		conflict := &ConflictError{}
		if seatID, ok := seatIDFromGuardKey(blockedKey); ok {
			conflict.SeatIDs = append(conflict.SeatIDs, seatID)
		}
		return conflict
	}

	return nil
}

// Release drops every guard key the reservation still owns. Idempotent.
func (g *RedisGuard) Release(ctx context.Context, reservationID uuid.UUID) error {
	if g == nil || g.redis == nil {
		return nil
	}

	_, err := g.redis.EvalSha(ctx, luaGuardRelease, []string{reservationID.String()}).Result()
	if err != nil {
		_, err = g.redis.Eval(ctx, luaGuardRelease, []string{reservationID.String()}).Result()
		if err != nil {
			return fmt.Errorf("failed to execute guard release: %w", err)
		}
	}

	return nil
}

// PreloadScripts loads the Lua scripts into Redis for better performance
func (g *RedisGuard) PreloadScripts(ctx context.Context) error {
	if g == nil || g.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	if _, err := g.redis.ScriptLoad(ctx, luaGuardHold).Result(); err != nil {
		return fmt.Errorf("failed to load guard hold script: %w", err)
	}
	if _, err := g.redis.ScriptLoad(ctx, luaGuardRelease).Result(); err != nil {
		return fmt.Errorf("failed to load guard release script: %w", err)
	}

	return nil
}

// seatIDFromGuardKey recovers the seat UUID from a guard key
func seatIDFromGuardKey(key string) (uuid.UUID, bool) {
	const prefix = "seat_guard:"
	if len(key) < len(prefix)+36 || key[:len(prefix)] != prefix {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(key[len(prefix) : len(prefix)+36])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
