// Package cache keeps hot read paths of the API off mongo with a redis
// read-through layer.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/bitmark-inc/georisk-api/schema"
)

const (
	profilesKey   = "georisk:profiles"
	profilePrefix = "georisk:profile:"

	// ProfileTTL bounds staleness between scoring runs
	ProfileTTL = 5 * time.Minute
)

// ProfileCache caches risk score reads. A cache miss or a redis failure is
// never fatal; callers fall through to the store.
type ProfileCache struct {
	client *redis.Client
}

func NewProfileCache(addr, password string, db int) (*ProfileCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &ProfileCache{client: client}, nil
}

// GetProfiles returns the cached profile list, or false on miss.
func (p *ProfileCache) GetProfiles(ctx context.Context) ([]schema.RiskScore, bool) {
	data, err := p.client.Get(ctx, profilesKey).Bytes()
	if err != nil {
		return nil, false
	}

	var profiles []schema.RiskScore
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, false
	}
	return profiles, true
}

// SetProfiles stores the profile list with the standard TTL.
func (p *ProfileCache) SetProfiles(ctx context.Context, profiles []schema.RiskScore) {
	data, err := json.Marshal(profiles)
	if err != nil {
		return
	}
	p.client.Set(ctx, profilesKey, data, ProfileTTL)
}

// GetProfile returns one cached site profile, or false on miss.
func (p *ProfileCache) GetProfile(ctx context.Context, siteID string) (*schema.RiskScore, bool) {
	data, err := p.client.Get(ctx, profilePrefix+siteID).Bytes()
	if err != nil {
		return nil, false
	}

	var profile schema.RiskScore
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, false
	}
	return &profile, true
}

// SetProfile stores one site profile with the standard TTL.
func (p *ProfileCache) SetProfile(ctx context.Context, siteID string, profile *schema.RiskScore) {
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	p.client.Set(ctx, profilePrefix+siteID, data, ProfileTTL)
}

// Invalidate drops every cached profile, called after a refresh trigger.
func (p *ProfileCache) Invalidate(ctx context.Context) {
	iter := p.client.Scan(ctx, 0, profilePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		p.client.Del(ctx, iter.Val())
	}
	p.client.Del(ctx, profilesKey)
}

// Ping checks the redis connection.
func (p *ProfileCache) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the redis connection.
func (p *ProfileCache) Close() error {
	return p.client.Close()
}
