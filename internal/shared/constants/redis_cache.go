package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// This file centralizes all Redis cache keys and TTL values for the ridepass application
// Pattern: ridepass:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Static Data (Long TTL: rarely changes)
const (
	TTL_STATIC_LONG   = 24 * time.Hour // for stable catalog data
	TTL_STATIC_MEDIUM = 12 * time.Hour // for departure definitions
)

// Semi-Static Data (Medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // for departure details
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // for departure listings
)

// Dynamic Data (Short TTL: changes frequently)
const (
	TTL_DYNAMIC_SHORT  = 5 * time.Minute  // for seat maps
	TTL_REALTIME_SHORT = 30 * time.Second // for live seat availability
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "ridepass"
)

// ================== DEPARTURES MODULE ==================

const (
	CACHE_KEY_DEPARTURE_DETAIL = CACHE_PREFIX + ":departures:detail:uuid:" // + departure-id
	CACHE_KEY_DEPARTURES_LIST  = CACHE_PREFIX + ":departures:list"         // + :page:X:limit:Y
)

const (
	TTL_DEPARTURE_DETAIL = TTL_SEMI_STATIC_MEDIUM
	TTL_DEPARTURES_LIST  = TTL_SEMI_STATIC_QUICK
)

// ================== SEATS MODULE ==================

const (
	CACHE_KEY_SEAT_MAP = CACHE_PREFIX + ":seats:map:departure:" // + departure-id
)

const (
	TTL_SEAT_MAP = TTL_DYNAMIC_SHORT
)

// ================== COUPONS MODULE ==================

const (
	CACHE_KEY_COUPON_BY_CODE = CACHE_PREFIX + ":coupons:detail:code:" // + code
)

const (
	TTL_COUPON_DETAIL = TTL_SEMI_STATIC_QUICK
)

// ================== SEAT HOLD GUARD ==================

// Hold-guard keys are owned by the seats package Lua scripts; the prefix is
// declared here so cache invalidation tooling can see the full keyspace.
const (
	HOLD_GUARD_SEAT_PREFIX = CACHE_PREFIX + ":hold:seat:" // + seat-id -> reservation-id
)

// ================== KEY BUILDERS ==================

// BuildSeatMapKey builds the cache key for a departure's seat map
func BuildSeatMapKey(departureID string) string {
	return CACHE_KEY_SEAT_MAP + departureID
}

// BuildDepartureDetailKey builds the cache key for departure details
func BuildDepartureDetailKey(departureID string) string {
	return CACHE_KEY_DEPARTURE_DETAIL + departureID
}

// BuildDeparturesListKey builds the cache key for a departures listing page
func BuildDeparturesListKey(page, limit int) string {
	return fmt.Sprintf("%s:page:%d:limit:%d", CACHE_KEY_DEPARTURES_LIST, page, limit)
}

// BuildCouponKey builds the cache key for a coupon lookup by code
func BuildCouponKey(code string) string {
	return CACHE_KEY_COUPON_BY_CODE + code
}

// BuildHoldGuardKey builds the Redis key guarding a single seat hold
func BuildHoldGuardKey(seatID string) string {
	return HOLD_GUARD_SEAT_PREFIX + seatID
}
