package strategy

import (
	"context"
	"time"

	"golang-market-intel/internal/executor/repository"

	"github.com/patrickmn/go-cache"
)

// DuplicateGate answers whether a URL is already archived. Known URLs are
// remembered so a link syndicated by several feeds is looked up once.
type DuplicateGate struct {
	repo  repository.NewsItemRepository
	known *cache.Cache
}

// NewDuplicateGate creates a gate that caches known URLs for ttl.
func NewDuplicateGate(repo repository.NewsItemRepository, ttl time.Duration) *DuplicateGate {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &DuplicateGate{
		repo:  repo,
		known: cache.New(ttl, 2*ttl),
	}
}

// Seen reports whether url is already in the archive. A lookup error is returned
// as is; the caller skips the candidate for this run.
func (g *DuplicateGate) Seen(ctx context.Context, url string) (bool, error) {
	if _, ok := g.known.Get(url); ok {
		return true, nil
	}
	exists, err := g.repo.ExistsByURL(ctx, url)
	if err != nil {
		return false, err
	}
	if exists {
		g.Remember(url)
	}
	return exists, nil
}

// Remember marks url as archived.
func (g *DuplicateGate) Remember(url string) {
	g.known.SetDefault(url, struct{}{})
}
