package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/breedermaps/server/internal/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// DefaultGeocodingRate is the outbound call budget toward Nominatim,
	// per its usage policy.
	DefaultGeocodingRate = 1.0

	// DefaultGeocodingBurst is the token bucket capacity.
	DefaultGeocodingBurst = 1

	// DefaultGeocodeCacheTTL is how long resolved lookups stay cached.
	DefaultGeocodeCacheTTL = 24 * time.Hour
)

// defaultBackoff is the retry schedule on transient provider failures.
var defaultBackoff = []time.Duration{1 * time.Second, 2 * time.Second}

// GeocodingService resolves ZIP codes to coordinates and coordinates to
// addresses. Cache hits bypass the rate limiter entirely; misses go through
// the token bucket, a single-flight group (so concurrent cold lookups for
// one key make one provider call) and a bounded retry loop.
type GeocodingService struct {
	provider GeocodingProvider
	cache    GeocodeCacheStore
	limiter  *rate.Limiter
	group    singleflight.Group
	clock    clockwork.Clock
	ttl      time.Duration
	backoff  []time.Duration
	log      *zap.SugaredLogger
}

// GeocodingOption configures the GeocodingService.
type GeocodingOption func(*GeocodingService)

// WithRateLimit overrides the provider call budget.
func WithRateLimit(callsPerSecond float64, burst int) GeocodingOption {
	return func(s *GeocodingService) {
		s.limiter = rate.NewLimiter(rate.Limit(callsPerSecond), burst)
	}
}

// WithCacheTTL overrides the cache entry lifetime.
func WithCacheTTL(ttl time.Duration) GeocodingOption {
	return func(s *GeocodingService) {
		s.ttl = ttl
	}
}

// WithBackoffSchedule overrides the retry schedule. The slice length is the
// retry count; each element is the wait before that retry.
func WithBackoffSchedule(schedule []time.Duration) GeocodingOption {
	return func(s *GeocodingService) {
		s.backoff = schedule
	}
}

// WithClock injects a clock for backoff waits.
func WithClock(clock clockwork.Clock) GeocodingOption {
	return func(s *GeocodingService) {
		s.clock = clock
	}
}

// NewGeocodingService creates a geocoding service around a provider and a
// cache store.
func NewGeocodingService(provider GeocodingProvider, cache GeocodeCacheStore, opts ...GeocodingOption) *GeocodingService {
	s := &GeocodingService{
		provider: provider,
		cache:    cache,
		limiter:  rate.NewLimiter(rate.Limit(DefaultGeocodingRate), DefaultGeocodingBurst),
		clock:    clockwork.NewRealClock(),
		ttl:      DefaultGeocodeCacheTTL,
		backoff:  defaultBackoff,
		log:      logger.GetLogger("geocode"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GeocodeZip converts a 5-digit US ZIP code to coordinates.
func (s *GeocodingService) GeocodeZip(ctx context.Context, zipCode string) (Coordinates, error) {
	if !zipCodeRegex.MatchString(zipCode) {
		return Coordinates{}, &ValidationError{Field: "zip", Value: zipCode, Constraint: "must be a 5-digit numeric ZIP code"}
	}

	data, err := s.resolve(ctx, ZipCacheKey(zipCode), func(ctx context.Context) (interface{}, error) {
		return s.provider.Forward(ctx, zipCode)
	})
	if err != nil {
		return Coordinates{}, err
	}

	var coords Coordinates
	if err := json.Unmarshal(data, &coords); err != nil {
		return Coordinates{}, err
	}
	return coords, nil
}

// ReverseGeocode converts coordinates to an address.
func (s *GeocodingService) ReverseGeocode(ctx context.Context, lat, lon float64) (Address, error) {
	if err := validateLatitude(lat); err != nil {
		return Address{}, err
	}
	if err := validateLongitude(lon); err != nil {
		return Address{}, err
	}

	data, err := s.resolve(ctx, ReverseCacheKey(lat, lon), func(ctx context.Context) (interface{}, error) {
		return s.provider.Reverse(ctx, lat, lon)
	})
	if err != nil {
		return Address{}, err
	}

	var addr Address
	if err := json.Unmarshal(data, &addr); err != nil {
		return Address{}, err
	}
	return addr, nil
}

// resolve serves a lookup from the cache, or fetches it from the provider
// under the single-flight group. The flight runs on a context detached from
// the initiating caller, so one caller's cancellation cannot fail coalesced
// callers still waiting on the same key. The cached value is the marshaled
// result, so repeated lookups within the TTL are byte-identical.
func (s *GeocodingService) resolve(ctx context.Context, key string, call func(context.Context) (interface{}, error)) ([]byte, error) {
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		// Cache outages degrade to a miss, never fail the lookup
		s.log.Warnw("cache read failed", "key", key, "error", err)
	} else if ok {
		return data, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.fetch(context.WithoutCancel(ctx), key, call)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// fetch is the miss path: each attempt waits for a limiter token before the
// provider call, then retries with backoff.
func (s *GeocodingService) fetch(ctx context.Context, key string, call func(context.Context) (interface{}, error)) ([]byte, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		// Every call start costs a token, retries included. Wait
		// cancellation hands the reserved token back to the bucket.
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		result, err := call(ctx)
		if err == nil {
			data, merr := json.Marshal(result)
			if merr != nil {
				return nil, merr
			}
			if cerr := s.cache.Set(ctx, key, data, s.ttl); cerr != nil {
				s.log.Warnw("cache write failed", "key", key, "error", cerr)
			}
			return data, nil
		}

		if errors.Is(err, ErrNotFound) {
			// Not cached: a ZIP the provider learns later should resolve then
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		if attempt >= len(s.backoff) {
			break
		}

		wait := s.backoff[attempt]
		s.log.Warnw("provider call failed, retrying", "key", key, "attempt", attempt+1, "wait", wait, "error", err)
		if serr := s.sleepFor(ctx, wait); serr != nil {
			return nil, serr
		}
	}

	retryAfter := s.retryAfterHint()
	var pe *ProviderError
	if errors.As(lastErr, &pe) && pe.StatusCode == http.StatusTooManyRequests {
		s.log.Errorw("provider quota exhausted", "key", key, "error", lastErr)
		return nil, &RateLimitedError{RetryAfter: retryAfter}
	}

	s.log.Errorw("provider retries exhausted", "key", key, "error", lastErr)
	return nil, &UnavailableError{Service: "geocoding", RetryAfter: retryAfter, Err: lastErr}
}

func (s *GeocodingService) sleepFor(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(d):
		return nil
	}
}

// retryAfterHint doubles the last backoff step, continuing the schedule.
func (s *GeocodingService) retryAfterHint() int {
	if len(s.backoff) == 0 {
		return 1
	}
	hint := int((2 * s.backoff[len(s.backoff)-1]).Seconds())
	if hint < 1 {
		hint = 1
	}
	return hint
}
