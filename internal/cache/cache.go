package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is a minimal key/value cache used to memoize derived computations
// (campaign totals in particular) on a hash of their inputs.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
	Flush(ctx context.Context)
}

const (
	// PrefixCampaignTotals namespaces memoized campaign totals entries
	PrefixCampaignTotals = "campaign_totals"
)

// Key builds a cache key from a prefix and parts, e.g.
// Key(PrefixCampaignTotals, tenantID, campaignID, inputHash).
func Key(prefix string, parts ...string) string {
	return fmt.Sprintf("%s:%s", prefix, strings.Join(parts, ":"))
}
