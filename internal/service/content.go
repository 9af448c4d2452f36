package service

import (
	"context"
	"sort"
	"strings"

	"github.com/smashpoint/league/internal/domain"
	"github.com/smashpoint/league/internal/league"
	"github.com/smashpoint/league/internal/ledger"
)

// NewsInput holds the fields of a news post.
type NewsInput struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
	Image    string `json:"image"`
}

// PostInput holds the fields of a community post.
type PostInput struct {
	Author   string `json:"author"`
	PlayerID string `json:"player_id"`
	Content  string `json:"content"`
}

// minPostLength is the shortest community post accepted.
const minPostLength = 3

// ListNews returns news newest first. Category "All" (or empty) disables the category filter;
// search matches title or content case-insensitively.
func (s *LeagueService) ListNews(ctx context.Context, category, search string) ([]domain.NewsItem, error) {
	doc, err := s.gate.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	category = strings.TrimSpace(category)
	search = strings.ToLower(strings.TrimSpace(search))

	items := make([]domain.NewsItem, 0, len(doc.News))
	for _, n := range doc.News {
		if category != "" && category != domain.NewsCategoryAll && n.Category != category {
			continue
		}
		if search != "" && !containsFold(search, n.Title, n.Content) {
			continue
		}
		items = append(items, n)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// CreateNews publishes a news post. Title and content are required.
func (s *LeagueService) CreateNews(ctx context.Context, in NewsInput) (domain.NewsItem, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return domain.NewsItem{}, domain.ErrValidation("title and content are required")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = domain.NewsCategoryOfficial
	}

	now := s.now()
	item := domain.NewsItem{
		ID:        domain.NewID(domain.PrefixNews),
		Title:     title,
		Category:  category,
		Content:   content,
		Image:     strings.TrimSpace(in.Image),
		Date:      now.Format("2006-01-02"),
		CreatedAt: now.UTC(),
	}

	evt, err := ledger.WithMutation(ctx, s.gate, func(doc *domain.Document) (domain.Event, error) {
		doc.News = append(doc.News, item)
		return stamp(domain.NewEvent(domain.AggregateContent, item.ID, domain.EventNewsPublished, item), doc.Revision), nil
	})
	if err != nil {
		return domain.NewsItem{}, err
	}

	s.logger.Info("news published", "news_id", item.ID, "category", item.Category)
	s.publish(ctx, evt)
	return item, nil
}

// DeleteNews removes a news post.
func (s *LeagueService) DeleteNews(ctx context.Context, id string) error {
	return s.gate.Mutate(ctx, func(doc *domain.Document) error {
		var n int
		doc.News, n = league.RemoveWhere(doc.News, func(item domain.NewsItem) bool { return item.ID == id })
		if n == 0 {
			return domain.ErrNotFound("news post", id)
		}
		return nil
	})
}

// ListCommunity returns community posts newest first, filtered by author or content.
func (s *LeagueService) ListCommunity(ctx context.Context, search string) ([]domain.CommunityPost, error) {
	doc, err := s.gate.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	posts := make([]domain.CommunityPost, 0, len(doc.CommunityPosts))
	for _, p := range doc.CommunityPosts {
		if search != "" && !containsFold(search, p.Author, p.Content) {
			continue
		}
		posts = append(posts, p)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// CreatePost adds a community post.
func (s *LeagueService) CreatePost(ctx context.Context, in PostInput) (domain.CommunityPost, error) {
	author := strings.TrimSpace(in.Author)
	content := strings.TrimSpace(in.Content)
	if author == "" {
		return domain.CommunityPost{}, domain.ErrValidation("author is required")
	}
	if len([]rune(content)) < minPostLength {
		return domain.CommunityPost{}, domain.ErrValidation("community post is too short")
	}

	post := domain.CommunityPost{
		ID:        domain.NewID(domain.PrefixCommunity),
		Author:    author,
		PlayerID:  strings.TrimSpace(in.PlayerID),
		Content:   content,
		CreatedAt: s.now().UTC(),
	}

	evt, err := ledger.WithMutation(ctx, s.gate, func(doc *domain.Document) (domain.Event, error) {
		doc.CommunityPosts = append(doc.CommunityPosts, post)
		return stamp(domain.NewEvent(domain.AggregateContent, post.ID, domain.EventCommunityPosted, post), doc.Revision), nil
	})
	if err != nil {
		return domain.CommunityPost{}, err
	}

	s.publish(ctx, evt)
	return post, nil
}

// DeletePost removes a community post.
func (s *LeagueService) DeletePost(ctx context.Context, id string) error {
	return s.gate.Mutate(ctx, func(doc *domain.Document) error {
		var n int
		doc.CommunityPosts, n = league.RemoveWhere(doc.CommunityPosts, func(p domain.CommunityPost) bool { return p.ID == id })
		if n == 0 {
			return domain.ErrNotFound("community post", id)
		}
		return nil
	})
}

// containsFold reports whether any field contains needle, which must already be lower-cased.
func containsFold(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
