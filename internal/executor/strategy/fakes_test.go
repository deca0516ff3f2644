package strategy

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/executor/dto"
	"golang-market-intel/internal/executor/repository"
)

// memoryNewsRepo is an in-memory NewsItemRepository with a unique url constraint.
type memoryNewsRepo struct {
	mu        sync.Mutex
	items     map[string]*entity.NewsItem
	order     []string
	existsErr error
	insertErr error
	lookups   int
}

func newMemoryNewsRepo() *memoryNewsRepo {
	return &memoryNewsRepo{items: map[string]*entity.NewsItem{}}
}

func (r *memoryNewsRepo) ExistsByURL(_ context.Context, url string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if r.existsErr != nil {
		return false, r.existsErr
	}
	for _, item := range r.items {
		if item.URL == url {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryNewsRepo) CreateIgnoreConflict(_ context.Context, item *entity.NewsItem) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return false, r.insertErr
	}
	for _, existing := range r.items {
		if existing.URL == item.URL {
			return false, nil
		}
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	stored := *item
	r.items[item.ID] = &stored
	r.order = append(r.order, item.ID)
	return true, nil
}

func (r *memoryNewsRepo) FindByStatus(_ context.Context, status entity.NewsStatus, limit int) ([]entity.NewsItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.NewsItem
	for _, id := range r.order {
		if item := r.items[id]; item.Status == status {
			out = append(out, *item)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memoryNewsRepo) MarkEnriched(_ context.Context, id string, sentiment float64, insight string) error {
	return r.transition(id, entity.StatusEnriched, func(item *entity.NewsItem) {
		item.SentimentScore = sentiment
		item.AISummary = insight
	})
}

func (r *memoryNewsRepo) MarkFailed(_ context.Context, id string, reason string) error {
	return r.transition(id, entity.StatusFailed, func(item *entity.NewsItem) {
		item.EnrichmentError = reason
	})
}

func (r *memoryNewsRepo) transition(id string, next entity.NewsStatus, apply func(*entity.NewsItem)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || !item.Status.CanTransitionTo(next) {
		return repository.ErrNotPending
	}
	item.Status = next
	apply(item)
	return nil
}

func (r *memoryNewsRepo) FindByID(_ context.Context, id string) (*entity.NewsItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *item
	return &out, nil
}

func (r *memoryNewsRepo) List(_ context.Context, _ repository.NewsItemFilter) ([]entity.NewsItem, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (r *memoryNewsRepo) CountByStatus(_ context.Context) (map[entity.NewsStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[entity.NewsStatus]int64{}
	for _, item := range r.items {
		counts[item.Status]++
	}
	return counts, nil
}

func (r *memoryNewsRepo) all() []entity.NewsItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.NewsItem, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

// seed stores pending items in insertion order and returns their ids.
func (r *memoryNewsRepo) seed(titles ...string) []string {
	ids := make([]string, 0, len(titles))
	for _, title := range titles {
		item := &entity.NewsItem{
			Title:   title,
			URL:     "https://news.example/" + uuid.NewString(),
			Summary: title + " summary",
			Status:  entity.StatusPendingEnrichment,
		}
		_, _ = r.CreateIgnoreConflict(context.Background(), item)
		ids = append(ids, item.ID)
	}
	return ids
}

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) AnalyzeNews(ctx context.Context, title, summary string) (*dto.NewsAnalysisResult, error) {
	args := m.Called(ctx, title, summary)
	result, _ := args.Get(0).(*dto.NewsAnalysisResult)
	return result, args.Error(1)
}
