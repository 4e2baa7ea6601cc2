// Package githubprofile summarizes a candidate's public GitHub account.
package githubprofile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/jonathan/careerpilot/internal/cache"
	"github.com/jonathan/careerpilot/internal/parsing"
	"github.com/jonathan/careerpilot/internal/types"
)

const (
	// TopRepos is the number of repositories kept in a summary.
	TopRepos = 5
	// ReadmeExcerptLen caps the README excerpt in runes.
	ReadmeExcerptLen = 500

	reposPerPage = 20
	summaryTTL   = time.Hour
)

// ErrInvalidURL is returned when no account can be derived from a URL.
var ErrInvalidURL = errors.New("invalid GitHub URL")

// NewClient returns a GitHub API client. An empty token yields an
// unauthenticated client with the public rate limit.
func NewClient(ctx context.Context, token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, ts))
}

// Summarizer builds GitHubSummary values from the GitHub REST API.
// Results are cached per username.
type Summarizer struct {
	client  *github.Client
	limiter *rate.Limiter
	cache   *cache.TTL[string, *types.GitHubSummary]
	logger  *zap.Logger
}

// NewSummarizer wraps client. Outgoing calls are throttled to one per second
// with a burst of ten.
func NewSummarizer(client *github.Client, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(1), 10),
		cache:   cache.NewTTL[string, *types.GitHubSummary](summaryTTL),
		logger:  logger.Named("github"),
	}
}

// Summarize fetches the profile and top repositories of the account in url.
// A failed profile lookup leaves the profile empty; a failed repository
// listing fails the summary.
func (s *Summarizer) Summarize(ctx context.Context, url string) (*types.GitHubSummary, error) {
	username, ok := parsing.GitHubUsername(url)
	if !ok {
		return nil, ErrInvalidURL
	}
	key := strings.ToLower(username)
	return s.cache.GetOrLoad(key, func(string) (*types.GitHubSummary, error) {
		return s.fetch(ctx, username)
	})
}

func (s *Summarizer) fetch(ctx context.Context, username string) (*types.GitHubSummary, error) {
	summary := &types.GitHubSummary{Username: username, Repos: []types.GitHubRepo{}}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	user, _, err := s.client.Users.Get(ctx, username)
	if err != nil {
		s.logger.Warn("github profile fetch failed", zap.String("username", username), zap.Error(err))
	} else {
		summary.Profile = types.GitHubProfile{
			Name:        user.GetName(),
			Bio:         user.GetBio(),
			Company:     user.GetCompany(),
			Location:    user.GetLocation(),
			PublicRepos: user.GetPublicRepos(),
			Followers:   user.GetFollowers(),
			Following:   user.GetFollowing(),
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	repos, _, err := s.client.Repositories.List(ctx, username, &github.RepositoryListOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: reposPerPage},
	})
	if err != nil {
		return nil, fmt.Errorf("list repositories for %s: %w", username, err)
	}

	sort.SliceStable(repos, func(i, j int) bool {
		return repos[i].GetStargazersCount() > repos[j].GetStargazersCount()
	})
	if len(repos) > TopRepos {
		repos = repos[:TopRepos]
	}

	for _, r := range repos {
		topics := r.Topics
		if topics == nil {
			topics = []string{}
		}
		summary.Repos = append(summary.Repos, types.GitHubRepo{
			Name:          r.GetName(),
			Description:   r.GetDescription(),
			Stars:         r.GetStargazersCount(),
			Language:      r.GetLanguage(),
			Topics:        topics,
			ReadmeExcerpt: s.readmeExcerpt(ctx, username, r.GetName()),
		})
	}
	return summary, nil
}

func (s *Summarizer) readmeExcerpt(ctx context.Context, owner, repo string) string {
	if err := s.limiter.Wait(ctx); err != nil {
		return ""
	}
	readme, resp, err := s.client.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		if resp == nil || resp.StatusCode != http.StatusNotFound {
			s.logger.Debug("readme fetch failed", zap.String("repo", owner+"/"+repo), zap.Error(err))
		}
		return ""
	}
	content, err := readme.GetContent()
	if err != nil {
		return ""
	}
	return truncateRunes(content, ReadmeExcerptLen)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
