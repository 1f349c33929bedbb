package sigcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mendoza-g/centavo/internal/model"
)

// Retention window for cache entries; older entries are pruned on save.
const retentionWindow = 180 * 24 * time.Hour

// LearnThreshold is the minimum AI confidence worth remembering.
const LearnThreshold = 0.95

// Entry is one remembered categorization, keyed by description signature.
type Entry struct {
	LastSeen          time.Time        `json:"last_seen"`
	BudgetType        model.BudgetType `json:"budget_type"`
	BudgetSubcategory string           `json:"budget_subcategory"`
	Confidence        float64          `json:"confidence"`
}

// Cache is the process-wide signature cache. It is safe for concurrent
// readers and is persisted between runs via Load and Save.
type Cache struct {
	entries map[string]Entry
	mu      sync.RWMutex
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Lookup resolves a transaction against the cache. A miss returns false and
// has no side effects; a hit carries the cached confidence through unchanged.
func (c *Cache) Lookup(txn model.Transaction) (model.CategorizationResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[Signature(txn.Description)]
	if !ok {
		return model.CategorizationResult{}, false
	}

	return model.CategorizationResult{
		SequenceID:        txn.SequenceID,
		BudgetType:        entry.BudgetType,
		BudgetSubcategory: entry.BudgetSubcategory,
		Confidence:        entry.Confidence,
		Source:            model.SourceCache,
	}, true
}

// Learn records a categorization for future lookups. Callers only learn
// AI-tier results with confidence at or above LearnThreshold.
func (c *Cache) Learn(txn model.Transaction, result model.CategorizationResult) {
	sig := Signature(txn.Description)
	if sig == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sig] = Entry{
		BudgetType:        result.BudgetType,
		BudgetSubcategory: result.BudgetSubcategory,
		Confidence:        result.Confidence,
		LastSeen:          time.Now(),
	}
}

// Size returns the number of cached signatures.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Prune drops entries not seen within the retention window and returns how
// many were removed.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-retentionWindow)
	pruned := 0
	for sig, entry := range c.entries {
		if entry.LastSeen.Before(cutoff) {
			delete(c.entries, sig)
			pruned++
		}
	}
	return pruned
}

// Load reads the cache file at path. A missing file yields an empty cache.
func (c *Cache) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse cache file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
	return nil
}

// Save prunes stale entries and writes the cache to path.
func (c *Cache) Save(path string) error {
	c.Prune()

	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}
