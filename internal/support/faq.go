package support

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"evmeri/internal/apperr"
	"evmeri/internal/models"
)

type FAQRepository interface {
	ListActive(ctx context.Context, category models.FAQCategory, search string) ([]models.FAQ, error)
	Get(ctx context.Context, id int64) (*models.FAQ, error)
	IncrementViews(ctx context.Context, id int64) error
	Create(ctx context.Context, f *models.FAQ) error
	Save(ctx context.Context, f *models.FAQ) error
	// Ensure inserts f unless a FAQ with the same category and question
	// exists. It reports whether a row was created.
	Ensure(ctx context.Context, f *models.FAQ) (bool, error)
}

// ListCache stores grouped FAQ listings.
type ListCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

const faqCachePrefix = "faqs:list:"

type FAQItem struct {
	ID        int64  `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	ViewCount uint   `json:"view_count"`
}

type CategoryGroup struct {
	Category        models.FAQCategory `json:"category"`
	CategoryDisplay string             `json:"category_display"`
	FAQs            []FAQItem          `json:"faqs"`
}

// SortFAQs orders by category, then display order, then question.
func SortFAQs(faqs []models.FAQ) {
	sort.SliceStable(faqs, func(i, j int) bool {
		a, b := faqs[i], faqs[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Question < b.Question
	})
}

// MatchesSearch is a case-insensitive substring match on question or answer.
func MatchesSearch(f models.FAQ, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(f.Question), search) ||
		strings.Contains(strings.ToLower(f.Answer), search)
}

// Filter keeps active entries in category (all categories when empty)
// matching search.
func Filter(faqs []models.FAQ, category models.FAQCategory, search string) []models.FAQ {
	out := make([]models.FAQ, 0, len(faqs))
	for _, f := range faqs {
		if !f.IsActive {
			continue
		}
		if category != "" && f.Category != category {
			continue
		}
		if !MatchesSearch(f, search) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// GroupByCategory groups sorted entries, keeping category order.
func GroupByCategory(faqs []models.FAQ) []CategoryGroup {
	groups := []CategoryGroup{}
	idx := make(map[models.FAQCategory]int)
	for _, f := range faqs {
		i, ok := idx[f.Category]
		if !ok {
			i = len(groups)
			idx[f.Category] = i
			groups = append(groups, CategoryGroup{Category: f.Category, CategoryDisplay: f.Category.Display()})
		}
		groups[i].FAQs = append(groups[i].FAQs, FAQItem{ID: f.ID, Question: f.Question, Answer: f.Answer, ViewCount: f.ViewCount})
	}
	return groups
}

type FAQInput struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Order    *int   `json:"order,omitempty"`
}

type FAQPatch struct {
	Category *string `json:"category,omitempty"`
	Question *string `json:"question,omitempty"`
	Answer   *string `json:"answer,omitempty"`
	Order    *int    `json:"order,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type FAQService struct {
	repo  FAQRepository
	cache ListCache
	ttl   time.Duration
	lg    *zap.SugaredLogger
}

// NewFAQService wires the catalog. cache may be nil.
func NewFAQService(repo FAQRepository, cache ListCache, ttl time.Duration, lg *zap.SugaredLogger) *FAQService {
	return &FAQService{repo: repo, cache: cache, ttl: ttl, lg: lg}
}

func cacheKey(category models.FAQCategory, search string) string {
	return faqCachePrefix + string(category) + ":" + strings.ToLower(strings.TrimSpace(search))
}

// List returns active FAQs grouped by category. An unknown category simply
// matches nothing.
func (s *FAQService) List(ctx context.Context, category models.FAQCategory, search string) ([]CategoryGroup, error) {
	if category != "" && !category.Valid() {
		return []CategoryGroup{}, nil
	}
	key := cacheKey(category, search)
	if s.cache != nil {
		var cached []CategoryGroup
		if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
			s.lg.Warnw("faq cache read failed", "key", key, "error", err)
		} else if hit {
			return cached, nil
		}
	}

	rows, err := s.repo.ListActive(ctx, category, search)
	if err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	rows = Filter(rows, category, search)
	SortFAQs(rows)
	groups := GroupByCategory(rows)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, groups, s.ttl); err != nil {
			s.lg.Warnw("faq cache write failed", "key", key, "error", err)
		}
	}
	return groups, nil
}

// Detail returns an active FAQ and counts the read. Every call counts.
func (s *FAQService) Detail(ctx context.Context, id int64) (*models.FAQ, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.IsActive {
		return nil, apperr.NotFound("FAQ not found")
	}
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return nil, fmt.Errorf("count faq view: %w", err)
	}
	f.ViewCount++
	return f, nil
}

func (in FAQInput) validate() (models.FAQ, apperr.FieldErrors) {
	var fe apperr.FieldErrors
	f := models.FAQ{
		Category: models.FAQCategory(in.Category),
		Question: strings.TrimSpace(in.Question),
		Answer:   strings.TrimSpace(in.Answer),
		IsActive: true,
	}
	if in.Category == "" {
		fe.Add("category", apperr.Required)
	} else if !f.Category.Valid() {
		fe.Add("category", apperr.InvalidChoice)
	}
	if f.Question == "" {
		fe.Add("question", apperr.Required)
	} else if len([]rune(f.Question)) > 500 {
		fe.Add("question", apperr.TooLong)
	}
	if f.Answer == "" {
		fe.Add("answer", apperr.Required)
	}
	if in.Order != nil {
		if *in.Order < 0 {
			fe.Add("order", apperr.MustBeNonNeg)
		} else {
			f.Order = uint(*in.Order)
		}
	}
	return f, fe
}

func (s *FAQService) Create(ctx context.Context, in FAQInput) (*models.FAQ, error) {
	f, fe := in.validate()
	if fe != nil {
		return nil, fe
	}
	if err := s.repo.Create(ctx, &f); err != nil {
		return nil, fmt.Errorf("create faq: %w", err)
	}
	s.invalidate(ctx)
	return &f, nil
}

func (s *FAQService) Update(ctx context.Context, id int64, p FAQPatch) (*models.FAQ, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := FAQInput{Category: string(f.Category), Question: f.Question, Answer: f.Answer}
	order := int(f.Order)
	merged.Order = &order
	if p.Category != nil {
		merged.Category = *p.Category
	}
	if p.Question != nil {
		merged.Question = *p.Question
	}
	if p.Answer != nil {
		merged.Answer = *p.Answer
	}
	if p.Order != nil {
		merged.Order = p.Order
	}
	next, fe := merged.validate()
	if fe != nil {
		return nil, fe
	}
	f.Category, f.Question, f.Answer, f.Order = next.Category, next.Question, next.Answer, next.Order
	if p.IsActive != nil {
		f.IsActive = *p.IsActive
	}
	if err := s.repo.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("save faq: %w", err)
	}
	s.invalidate(ctx)
	return f, nil
}

// Deactivate hides an entry; FAQs are never deleted.
func (s *FAQService) Deactivate(ctx context.Context, id int64) error {
	inactive := false
	_, err := s.Update(ctx, id, FAQPatch{IsActive: &inactive})
	return err
}

// Seed inserts the default FAQ set, skipping entries that already exist.
func (s *FAQService) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, f := range DefaultFAQs() {
		f := f
		ok, err := s.repo.Ensure(ctx, &f)
		if err != nil {
			return created, fmt.Errorf("seed faq %q: %w", f.Question, err)
		}
		if ok {
			created++
			s.lg.Infow("created faq", "question", f.Question)
		}
	}
	if created > 0 {
		s.invalidate(ctx)
	}
	return created, nil
}

func (s *FAQService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, faqCachePrefix); err != nil {
		s.lg.Warnw("faq cache invalidation failed", "error", err)
	}
}
