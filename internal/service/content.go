package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akarpov/newsline/internal/models"
)

// DefaultSnippetLen caps the text copied into a self-post's synthesized
// text:// placeholder url.
const DefaultSnippetLen = 64

// NewsRepository defines the persistence operations required by the
// content service.
type NewsRepository interface {
	// NextID atomically allocates the next news id.
	NextID(ctx context.Context) (int64, error)
	// Save writes the full news record.
	Save(ctx context.Context, n *models.News) error
	// GetByID fetches a news record; (nil, nil) when absent.
	GetByID(ctx context.Context, id int64) (*models.News, error)
	// ResolveURL returns the id of the first item posted with this url.
	ResolveURL(ctx context.Context, url string) (int64, bool, error)
	// ClaimURL atomically writes the url dedup entry if absent; a non-zero
	// ttl bounds the deduplication window.
	ClaimURL(ctx context.Context, url string, id int64, ttl time.Duration) (bool, error)
}

// Content implements news submission with URL-based deduplication on top
// of a NewsRepository.
type Content struct {
	repo       NewsRepository
	snippetLen int
	dedupTTL   time.Duration

	now func() time.Time
}

// NewContent constructs a Content service. snippetLen bounds the text
// copied into self-post placeholder urls (DefaultSnippetLen when <= 0).
// dedupTTL bounds the url deduplication window; zero deduplicates forever.
func NewContent(repo NewsRepository, snippetLen int, dedupTTL time.Duration) *Content {
	if snippetLen <= 0 {
		snippetLen = DefaultSnippetLen
	}
	return &Content{
		repo:       repo,
		snippetLen: snippetLen,
		dedupTTL:   dedupTTL,
		now:        time.Now,
	}
}

// Submit stores a news item and returns its id. created reports whether a
// new record was written: when the url was already posted, the existing
// item's id is returned with created=false and nothing is modified.
//
// An empty url makes this a self-post: the stored url becomes
// "text://<snippet of text>" and deduplication is skipped entirely, so
// two self-posts with identical text are both created.
func (s *Content) Submit(ctx context.Context, title, url, text string, authorID int64) (int64, bool, error) {
	if title == "" {
		return 0, false, fmt.Errorf("%w: title required", models.ErrValidation)
	}
	if url == "" && text == "" {
		return 0, false, fmt.Errorf("%w: either url or text required", models.ErrValidation)
	}
	if url != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return 0, false, fmt.Errorf("%w: only http:// and https:// urls are accepted", models.ErrValidation)
	}

	selfPost := url == ""
	if selfPost {
		url = "text://" + truncate(text, s.snippetLen)
	} else {
		if id, found, err := s.repo.ResolveURL(ctx, url); err != nil {
			return 0, false, err
		} else if found {
			return id, false, nil
		}
	}

	id, err := s.repo.NextID(ctx)
	if err != nil {
		return 0, false, err
	}

	if !selfPost {
		for {
			ok, err := s.repo.ClaimURL(ctx, url, id, s.dedupTTL)
			if err != nil {
				return 0, false, err
			}
			if ok {
				break
			}
			// Lost the claim to a concurrent submission; the allocated id
			// is abandoned and the winner's item is the result.
			winner, found, err := s.repo.ResolveURL(ctx, url)
			if err != nil {
				return 0, false, err
			}
			if found {
				return winner, false, nil
			}
			// The winner's entry expired between the claim and the lookup.
			// Claim again: a record must never be saved without its index
			// entry, or it would be invisible to future deduplication.
		}
	}

	n := &models.News{
		ID:       id,
		Title:    title,
		URL:      url,
		AuthorID: authorID,
		CTime:    s.now().Unix(),
	}
	if err := s.repo.Save(ctx, n); err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Get returns the news item with the given id, or ErrNotFound.
func (s *Content) Get(ctx context.Context, id int64) (*models.News, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, models.ErrNotFound
	}
	return n, nil
}

// truncate cuts s to at most n characters, never splitting a rune: the
// result ends up inside a stored url and must stay valid UTF-8.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
