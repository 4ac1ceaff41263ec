package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs for the Busly backend.
// Pattern: busly:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Static data (rarely changes)
const (
	TTL_STATIC_LONG  = 24 * time.Hour
	TTL_STATIC_SHORT = 6 * time.Hour
)

// Semi-static data (changes occasionally)
const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour
	TTL_SEMI_STATIC_SHORT  = 1 * time.Hour
	TTL_SEMI_STATIC_QUICK  = 10 * time.Minute
)

// Dynamic data (changes with every booking)
const (
	TTL_DYNAMIC_SHORT  = 2 * time.Minute
	TTL_REALTIME_SHORT = 30 * time.Second
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "busly"
)

// ================== BUSES MODULE ==================

const (
	CACHE_KEY_BUS_LIST   = CACHE_PREFIX + ":buses:list"         // all active buses
	CACHE_KEY_BUS_DETAIL = CACHE_PREFIX + ":buses:detail:uuid:" // + bus-id
)

const (
	TTL_BUS_LIST   = TTL_SEMI_STATIC_QUICK
	TTL_BUS_DETAIL = TTL_SEMI_STATIC_SHORT
)

// ================== SEAT MAP ==================

// Seat maps are date-scoped and invalidated on every hold/commit/release,
// so they only carry a short TTL as a backstop.
const (
	CACHE_KEY_SEAT_MAP = CACHE_PREFIX + ":seatmap:bus:" // + bus-id:date:YYYY-MM-DD

	TTL_SEAT_MAP = TTL_REALTIME_SHORT
)

// BuildSeatMapKey builds the seat map cache key for a bus and travel date
func BuildSeatMapKey(busID, travelDate string) string {
	return fmt.Sprintf("%s%s:date:%s", CACHE_KEY_SEAT_MAP, busID, travelDate)
}

// BuildBusDetailKey builds the bus detail cache key
func BuildBusDetailKey(busID string) string {
	return CACHE_KEY_BUS_DETAIL + busID
}

// SeatMapInvalidationPattern matches every cached seat map of a bus
func SeatMapInvalidationPattern(busID string) string {
	return fmt.Sprintf("%s%s:date:*", CACHE_KEY_SEAT_MAP, busID)
}
