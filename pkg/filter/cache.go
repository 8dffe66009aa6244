package filter

import (
	"github.com/loganalyzer/rtlog/pkg/models"
	log "github.com/sirupsen/logrus"
)

type cacheEntry struct {
	signature string
	matcher   *Matcher
	err       error
}

// Cache holds compiled matchers keyed by rule id. An entry is rebuilt when
// the rule's signature changes; a failed compile is retried on every lookup.
// A Cache is not safe for concurrent use.
type Cache struct {
	entries map[uint64]*cacheEntry
}

// NewCache creates an empty matcher cache
func NewCache() *Cache {
	return &Cache{entries: make(map[uint64]*cacheEntry)}
}

// Matcher returns the compiled matcher for rule, compiling it if needed.
func (c *Cache) Matcher(rule models.FilterRule) (*Matcher, error) {
	sig := rule.Signature()
	entry, ok := c.entries[rule.ID]
	if ok && entry.signature == sig && entry.matcher != nil {
		return entry.matcher, nil
	}

	m, err := Compile(rule)
	if err != nil {
		// Log only the first failure for a given signature.
		if !ok || entry.signature != sig {
			log.WithFields(log.Fields{"rule": rule.Pattern, "err": err}).Info("filter rule did not compile")
		}
		c.entries[rule.ID] = &cacheEntry{signature: sig, err: err}
		return nil, err
	}

	c.entries[rule.ID] = &cacheEntry{signature: sig, matcher: m}
	return m, nil
}

// Err returns the last compile error recorded for the rule id, if any.
func (c *Cache) Err(id uint64) error {
	if entry, ok := c.entries[id]; ok {
		return entry.err
	}
	return nil
}

// Forget drops the cached entry for a removed rule.
func (c *Cache) Forget(id uint64) {
	delete(c.entries, id)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Enabled returns the matchers of every enabled rule that compiles, in rule order.
func (c *Cache) Enabled(rules []models.FilterRule) []*Matcher {
	var out []*Matcher
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		if m, err := c.Matcher(r); err == nil {
			out = append(out, m)
		}
	}
	return out
}
