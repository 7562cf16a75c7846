// Copyright (c) 2026 Atsumira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/atsumira/internal/platform/constants"
)

// cachedNone is the sentinel stored for a confirmed non-membership, so the
// absence of a row is also served from cache.
const cachedNone = "none"

// CachedMembershipSource decorates a [MembershipSource] with a short-lived
// Redis read-through cache.
//
// # Staleness
//
// Entries live for [constants.MembershipCacheTTL] and are dropped eagerly by
// [InvalidateMembership] whenever the owning domain mutates a membership row,
// so a role change is visible on the next request. Redis being down degrades
// to uncached reads, never to failures.
type CachedMembershipSource struct {
	inner  MembershipSource
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedMembershipSource wraps a membership source with Redis caching.
func NewCachedMembershipSource(inner MembershipSource, client *redis.Client, logger *slog.Logger) *CachedMembershipSource {
	return &CachedMembershipSource{
		inner:  inner,
		client: client,
		ttl:    constants.MembershipCacheTTL,
		logger: logger,
	}
}

// MembershipRole implements [MembershipSource] with a cache-first read.
func (source *CachedMembershipSource) MembershipRole(context context.Context, userID string, kind ResourceKind, resourceID string) (Role, error) {
	key := cacheKey(userID, kind, resourceID)

	// 1. Cache hit path
	cached, err := source.client.Get(context, key).Result()
	if err == nil {
		if cached == cachedNone {
			return RoleNone, nil
		}
		return Role(cached), nil
	}

	if !errors.Is(err, redis.Nil) {
		// Degrade to the uncached read on connectivity problems.
		source.logger.WarnContext(context, "membership_cache_read_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}

	// 2. Authoritative read
	role, err := source.inner.MembershipRole(context, userID, kind, resourceID)
	if err != nil {
		return RoleNone, err
	}

	// 3. Populate the cache (best effort)
	value := string(role)
	if role == RoleNone {
		value = cachedNone
	}
	if err := source.client.Set(context, key, value, source.ttl).Err(); err != nil {
		source.logger.WarnContext(context, "membership_cache_write_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}

	return role, nil
}

// InvalidateMembership implements [MembershipInvalidator].
func (source *CachedMembershipSource) InvalidateMembership(context context.Context, userID string, kind ResourceKind, resourceID string) {
	key := cacheKey(userID, kind, resourceID)
	if err := source.client.Del(context, key).Err(); err != nil {
		source.logger.WarnContext(context, "membership_cache_invalidate_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

// cacheKey builds the Redis key for one (user, resource) membership.
func cacheKey(userID string, kind ResourceKind, resourceID string) string {
	return fmt.Sprintf("%s%s:%s:%s", constants.RedisPrefixMembership, kind, resourceID, userID)
}
