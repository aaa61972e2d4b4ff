package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/studyhub/studyhub-backend/config"
	"github.com/studyhub/studyhub-backend/services"
)

const (
	defaultBaseURL = "https://api.github.com"

	// reposPerPage is the page size used when listing repositories
	reposPerPage = 100

	// maxPages bounds pagination for very large accounts
	maxPages = 5

	// readmeMaxBytes caps how much of a README is pulled for analysis
	readmeMaxBytes = 8192
)

// Repo is a repository as returned by the GitHub REST API
type Repo struct {
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
	Fork        bool   `json:"fork"`
}

// User is the authenticated user as returned by the GitHub REST API
type User struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// Client talks to the GitHub REST API on behalf of a user token
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new GitHub API client
func NewClient(cfg config.GitHubConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetUser returns the user the token authenticates as. Used to verify a
// token before storing it.
func (c *Client) GetUser(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.get(ctx, token, "/user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListRepos returns the user's repositories, most recently pushed first.
// Forks are skipped.
func (c *Client) ListRepos(ctx context.Context, token string) ([]Repo, error) {
	var all []Repo

	for page := 1; page <= maxPages; page++ {
		path := fmt.Sprintf("/user/repos?per_page=%d&page=%d&sort=pushed", reposPerPage, page)

		var repos []Repo
		if err := c.get(ctx, token, path, &repos); err != nil {
			return nil, err
		}

		for _, repo := range repos {
			if repo.Fork {
				continue
			}
			all = append(all, repo)
		}

		if len(repos) < reposPerPage {
			break
		}
	}

	return all, nil
}

// GetReadme returns the raw README of a repository, truncated to a size
// suitable for prompting. A missing README is not an error; it returns
// an empty string.
func (c *Client) GetReadme(ctx context.Context, token, fullName string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/repos/"+fullName+"/readme", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, token)
	req.Header.Set("Accept", "application/vnd.github.raw+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.WrapExternal("github request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, readmeMaxBytes))
	if err != nil {
		return "", services.WrapExternal("failed to read github response", err)
	}

	return string(body), nil
}

// GetLanguages returns the byte counts per language for a repository
func (c *Client) GetLanguages(ctx context.Context, token, fullName string) (map[string]int, error) {
	languages := make(map[string]int)
	if err := c.get(ctx, token, "/repos/"+fullName+"/languages", &languages); err != nil {
		return nil, err
	}
	return languages, nil
}

func (c *Client) get(ctx context.Context, token, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.WrapExternal("github request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.WrapExternal("failed to decode github response", err)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
}

func (c *Client) statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return services.ErrInvalidToken
	case http.StatusForbidden, http.StatusTooManyRequests:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return services.ErrGithubRateLimited
		}
		return services.ErrForbidden
	case http.StatusNotFound:
		return services.ErrRepoNotFound
	default:
		return services.NewDomainError(services.ErrorTypeExternal, "github API unavailable",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}
