package directory

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

var _ ports.PartyDirectory = (*Redis)(nil)

const keyPrefix = "party:location:"

// Redis reads party locations stored as "lat,lng" strings under
// party:location:<id>.
type Redis struct {
	client *redis.Client
}

// NewRedis connects using a URL of the form redis://[:password@]host[:port][/database].
func NewRedis(redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

func (r *Redis) Location(ctx context.Context, partyID string) (kernel.Location, bool, error) {
	val, err := r.client.Get(ctx, keyPrefix+partyID).Result()
	if errors.Is(err, redis.Nil) {
		return kernel.Location{}, false, nil
	}
	if err != nil {
		return kernel.Location{}, false, fmt.Errorf("failed to get location of party %s: %w", partyID, err)
	}

	loc, err := parseCoordinates(val, ",")
	if err != nil {
		return kernel.Location{}, false, fmt.Errorf("party %s: %w", partyID, err)
	}
	return loc, true, nil
}

// SetLocation registers or replaces the location of a party.
func (r *Redis) SetLocation(ctx context.Context, partyID string, loc kernel.Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}

	val := strconv.FormatFloat(loc.Latitude(), 'f', -1, 64) + "," + strconv.FormatFloat(loc.Longitude(), 'f', -1, 64)
	if err := r.client.Set(ctx, keyPrefix+partyID, val, 0).Err(); err != nil {
		return fmt.Errorf("failed to set location of party %s: %w", partyID, err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
