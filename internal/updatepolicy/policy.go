// Package updatepolicy decides whether a cached timestamp is stale enough to
// warrant a re-fetch, given a symbolic update policy ("never", "always",
// "daily", "interval:N").
package updatepolicy

import (
	"strconv"
	"strings"
	"time"
)

const (
	Never    = "never"
	Always   = "always"
	Daily    = "daily"
	intervalPrefix = "interval:"
)

// IsUpdateRequired reports whether, given the current time and the last
// modification time of a cached item, policy demands a re-fetch.
//
// Policies:
//   - "never"        -> false
//   - "always" or ""  -> true
//   - "daily"        -> true iff lastModified precedes local midnight of now
//   - "interval:N"   -> true iff now - lastModified >= N minutes
//   - anything else  -> treated as "daily"
func IsUpdateRequired(now, lastModified time.Time, policy string) bool {
	switch {
	case policy == Never:
		return false
	case policy == Always || policy == "":
		return true
	case strings.HasPrefix(policy, intervalPrefix):
		minutes, err := strconv.Atoi(strings.TrimPrefix(policy, intervalPrefix))
		if err != nil || minutes <= 0 {
			return isBeforeMidnight(now, lastModified)
		}
		return now.Sub(lastModified) >= time.Duration(minutes)*time.Minute
	case policy == Daily:
		return isBeforeMidnight(now, lastModified)
	default:
		return isBeforeMidnight(now, lastModified)
	}
}

func isBeforeMidnight(now, lastModified time.Time) bool {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return lastModified.Before(midnight)
}

// EffectivePolicy returns the stricter (more-frequent-update) of two
// policies, used when merging mirror or release/snapshot policies.
func EffectivePolicy(a, b string) string {
	ra, rb := rank(a), rank(b)
	if ra <= rb {
		return a
	}
	return b
}

// rank orders policies from most- to least-frequent so the minimum wins.
// "always" (and "", which IsUpdateRequired treats the same) is strictest (0),
// "never" is loosest (highest), "daily" and unknown values sit at a fixed
// rank, and "interval:N" ranks by N minutes scaled below daily's rank so any
// bounded interval beats daily.
func rank(policy string) int {
	switch {
	case policy == Always || policy == "":
		return 0
	case strings.HasPrefix(policy, intervalPrefix):
		minutes, err := strconv.Atoi(strings.TrimPrefix(policy, intervalPrefix))
		if err != nil || minutes <= 0 {
			return dailyRank
		}
		if minutes >= dailyRank {
			return dailyRank - 1
		}
		return minutes
	case policy == Daily:
		return dailyRank
	case policy == Never:
		return neverRank
	default:
		return dailyRank
	}
}

const (
	dailyRank = 24 * 60
	neverRank = dailyRank + 1
)
