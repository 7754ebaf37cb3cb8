package grammar

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache memoizes compilations by the fingerprint of the input grammar and the compile options.
type Cache struct {
	compiled *ttlcache.Cache[string, *CompiledGrammar]
}

func NewCache(ttl time.Duration, capacity uint64) *Cache {
	return &Cache{
		compiled: ttlcache.New[string, *CompiledGrammar](
			ttlcache.WithTTL[string, *CompiledGrammar](ttl),
			ttlcache.WithCapacity[string, *CompiledGrammar](capacity),
		),
	}
}

// Start runs the cleanup of expired items. It blocks until Stop is called.
func (c *Cache) Start() {
	c.compiled.Start()
}

func (c *Cache) Stop() {
	c.compiled.Stop()
}

func (c *Cache) Len() int {
	return c.compiled.Len()
}

// Compile returns the cached result when an equal grammar has been compiled with the same options, otherwise
// it compiles the grammar and caches the result.
func (c *Cache) Compile(gram *Grammar, opts ...CompileOption) (*CompiledGrammar, error) {
	config := &compileConfig{}
	for _, opt := range opts {
		opt(config)
	}

	fp, err := Fingerprint(gram)
	if err != nil {
		return nil, err
	}
	key := fp + "/" + config.String()
	if item := c.compiled.Get(key); item != nil {
		tracer().Debugf("cache hit: %v", key)
		return item.Value(), nil
	}

	cg, err := compile(gram, config)
	if err != nil {
		return nil, err
	}
	c.compiled.Set(key, cg, ttlcache.DefaultTTL)
	return cg, nil
}
