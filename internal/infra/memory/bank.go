package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiznix-service/internal/domain"
	"quiznix-service/internal/questionbank"
)

// StaticBank serves categories from an in-memory map of documents (useful
// for tests/demos).
type StaticBank struct {
	docs map[string]questionbank.Document
}

func NewStaticBank(docs map[string]questionbank.Document) *StaticBank {
	return &StaticBank{docs: docs}
}

func (b *StaticBank) Categories(_ context.Context) ([]string, error) {
	cats := make([]string, 0, len(b.docs))
	for c := range b.docs {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats, nil
}

func (b *StaticBank) Load(_ context.Context, category string, lang domain.Language) ([]domain.Question, error) {
	doc, ok := b.docs[category]
	if !ok {
		return nil, domain.ErrUnknownCategory
	}
	return doc.ResolveAll(lang), nil
}

// Bank is the question-bank interface the cache decorates; it matches
// app.QuestionBank without importing it.
type Bank interface {
	Categories(ctx context.Context) ([]string, error)
	Load(ctx context.Context, category string, lang domain.Language) ([]domain.Question, error)
}

// BankCache caches per-(category, language) question sets with TTL to avoid
// repeated reads of the backing loader.
type BankCache struct {
	bank  Bank
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewBankCache(bank Bank, ttl time.Duration) *BankCache {
	return &BankCache{
		bank:  bank,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedSet),
	}
}

// Categories delegates to the backing bank; the catalog is a directory or
// table listing, cheap enough to skip caching.
func (c *BankCache) Categories(ctx context.Context) ([]string, error) {
	return c.bank.Categories(ctx)
}

func (c *BankCache) Load(ctx context.Context, category string, lang domain.Language) ([]domain.Question, error) {
	key := category + "|" + string(lang)
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.questions, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.questions, nil
		}
		c.mu.RUnlock()

		questions, err := c.bank.Load(ctx, category, lang)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[key] = cachedSet{
			questions: questions,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *BankCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
