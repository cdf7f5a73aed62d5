package resolver

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/ActiveState/devenv/pkg/envdef"
	"github.com/ActiveState/devenv/pkg/envspec"
)

type definitionCache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, expiration time.Duration)
	Flush()
}

// Cached memoizes the successful results of another resolver. Failures are not cached,
// so a dependency installed after a failed lookup is found on the next call.
type Cached struct {
	resolver Resolver
	cache    definitionCache
}

// NewCached wraps r. A zero ttl keeps results until Flush is called.
func NewCached(r Resolver, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Cached{
		resolver: r,
		cache:    cache.New(ttl, cache.NoExpiration),
	}
}

func (c *Cached) Resolve(ref envspec.Ref) (*envdef.EnvironmentDefinition, error) {
	if v, ok := c.cache.Get(string(ref)); ok {
		if ed, ok := v.(*envdef.EnvironmentDefinition); ok {
			return ed.Copy(), nil
		}
	}

	ed, err := c.resolver.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if ed == nil {
		ed = &envdef.EnvironmentDefinition{}
	}
	c.cache.Set(string(ref), ed.Copy(), cache.DefaultExpiration)
	return ed, nil
}

// Flush drops all memoized results
func (c *Cached) Flush() {
	c.cache.Flush()
}
