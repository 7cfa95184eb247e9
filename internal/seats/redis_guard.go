package seats

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ridepass/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// HoldGuard is a Redis fast-path in front of the Postgres ledger. It mirrors
// active holds as per-seat keys with a TTL so the hot reservation path can
// reject contended seats without a database round trip. Postgres remains
// authoritative; a guard miss or a Redis outage only costs the fast path.
type HoldGuard struct {
	redis *redis.Client
}

// NewHoldGuard creates a new Redis hold guard
func NewHoldGuard(redisClient *redis.Client) *HoldGuard {
	return &HoldGuard{redis: redisClient}
}

// Lua script for atomic all-or-nothing guard acquisition
const luaGuardHold = `
-- KEYS[1..N] = per-seat hold keys
-- ARGV[1] = reservation_id
-- ARGV[2] = ttl_seconds

local reservation_id = ARGV[1]
local ttl = tonumber(ARGV[2])

-- Check that no requested seat is already guarded
for i = 1, #KEYS do
    if redis.call("EXISTS", KEYS[i]) == 1 then
        return {0, KEYS[i]}
    end
end

-- All clear, guard them atomically
for i = 1, #KEYS do
    redis.call("SET", KEYS[i], reservation_id, "EX", ttl)
end

return {1, "success"}
`

// Lua script for holder-matched guard release
const luaGuardRelease = `
-- KEYS[1..N] = per-seat hold keys
-- ARGV[1] = reservation_id

local reservation_id = ARGV[1]
local released = 0

for i = 1, #KEYS do
    if redis.call("GET", KEYS[i]) == reservation_id then
        redis.call("DEL", KEYS[i])
        released = released + 1
    end
end

return {1, released}
`

func guardKeys(seatIDs []uuid.UUID) []string {
	keys := make([]string, 0, len(seatIDs))
	for _, id := range seatIDs {
		keys = append(keys, constants.BuildHoldGuardKey(id.String()))
	}
	return keys
}

// Hold guards all seats for the reservation atomically. A *ConflictError is
// returned when any seat is already guarded by another reservation.
func (g *HoldGuard) Hold(ctx context.Context, seatIDs []uuid.UUID, reservationID uuid.UUID, ttl time.Duration) error {
	if g.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	keys := guardKeys(seatIDs)
	args := []interface{}{reservationID.String(), strconv.Itoa(int(ttl.Seconds()))}

	result, err := g.redis.EvalSha(ctx, luaGuardHold, keys, args...).Result()
	if err != nil {
		// If script is not loaded, try to load and execute
		result, err = g.redis.Eval(ctx, luaGuardHold, keys, args...).Result()
		if err != nil {
			return fmt.Errorf("failed to execute guard hold: %w", err)
		}
	}

	success, detail, err := parseGuardResult(result)
	if err != nil {
		return err
	}

	if !success {
		conflictKey, _ := detail.(string)
		seatID, parseErr := uuid.Parse(strings.TrimPrefix(conflictKey, constants.HOLD_GUARD_SEAT_PREFIX))
		if parseErr != nil {
			return &ConflictError{}
		}
		return &ConflictError{SeatIDs: []uuid.UUID{seatID}}
	}

	return nil
}

// Release drops the guard keys whose value matches the reservation
func (g *HoldGuard) Release(ctx context.Context, seatIDs []uuid.UUID, reservationID uuid.UUID) (int, error) {
	if g.redis == nil {
		return 0, fmt.Errorf("redis client not available")
	}

	keys := guardKeys(seatIDs)
	args := []interface{}{reservationID.String()}

	result, err := g.redis.EvalSha(ctx, luaGuardRelease, keys, args...).Result()
	if err != nil {
		result, err = g.redis.Eval(ctx, luaGuardRelease, keys, args...).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to execute guard release: %w", err)
		}
	}

	_, detail, err := parseGuardResult(result)
	if err != nil {
		return 0, err
	}

	releasedCount, ok := detail.(int64)
	if !ok {
		return 0, fmt.Errorf("invalid released count in Lua script result")
	}

	return int(releasedCount), nil
}

// PreloadScripts loads the guard Lua scripts into Redis for better performance
func (g *HoldGuard) PreloadScripts(ctx context.Context) error {
	if g.redis == nil {
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

func parseGuardResult(result interface{}) (bool, interface{}, error) {
	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 2 {
		return false, nil, fmt.Errorf("unexpected result format from Lua script")
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return false, nil, fmt.Errorf("invalid success flag in Lua script result")
	}

	return success == 1, resultArray[1], nil
}
