// Package catalog holds the studio's service menu: canonical service names, their
// price text and the free-text aliases customers use for them.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Catalog is an immutable price and synonym table. It is safe for concurrent use.
type Catalog struct {
	prices   map[string]string
	synonyms map[string]string
}

// New builds a catalog from the given tables. Keys and synonym targets are normalized
// (trimmed, lowercased) and the inputs are copied.
func New(prices, synonyms map[string]string) *Catalog {
	c := &Catalog{
		prices:   make(map[string]string, len(prices)),
		synonyms: make(map[string]string, len(synonyms)),
	}
	for name, price := range prices {
		key := normalizeServiceKey(name)
		if key == "" {
			continue
		}
		c.prices[key] = strings.TrimSpace(price)
	}
	for alias, target := range synonyms {
		key := normalizeServiceKey(alias)
		if key == "" {
			continue
		}
		c.synonyms[key] = normalizeServiceKey(target)
	}
	return c
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the Beauty Blossoms menu.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = New(studioPrices, studioSynonyms)
	})
	return defaultCatalog
}

func normalizeServiceKey(service string) string {
	return strings.ToLower(strings.TrimSpace(service))
}

// Canonicalize resolves a customer-provided service name. A synonym hit returns the
// canonical name; anything else comes back trimmed and lowercased.
func (c *Catalog) Canonicalize(raw string) string {
	key := normalizeServiceKey(raw)
	if c == nil || key == "" {
		return key
	}
	if target, ok := c.synonyms[key]; ok && target != "" {
		return target
	}
	return key
}

// PriceOf returns the price text for a service after synonym resolution.
func (c *Catalog) PriceOf(raw string) (string, bool) {
	if c == nil {
		return "", false
	}
	key := c.Canonicalize(raw)
	if key == "" {
		return "", false
	}
	price := c.prices[key]
	if price == "" {
		return "", false
	}
	return price, true
}

// IsKnown reports whether raw resolves to a priced service.
func (c *Catalog) IsKnown(raw string) bool {
	_, ok := c.PriceOf(raw)
	return ok
}

// Services lists canonical service names in sorted order.
func (c *Catalog) Services() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.prices))
	for name := range c.prices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every synonym points at a priced service.
func (c *Catalog) Validate() error {
	if c == nil {
		return fmt.Errorf("catalog: nil catalog")
	}
	var dangling []string
	for alias, target := range c.synonyms {
		if _, ok := c.prices[target]; !ok {
			dangling = append(dangling, fmt.Sprintf("%s -> %s", alias, target))
		}
	}
	if len(dangling) > 0 {
		sort.Strings(dangling)
		return fmt.Errorf("catalog: synonyms without a price: %s", strings.Join(dangling, ", "))
	}
	return nil
}
