// Package githubclt provides a github API client.
package githubclt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v59/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ferrocene/releasetools/internal/logfields"
	"github.com/ferrocene/releasetools/internal/toolerr"
)

const DefaultHTTPClientTimeout = time.Minute

const loggerName = "github_client"

const serviceName = "github"

// New returns a new github api client for api.github.com.
func New(oauthAPItoken string) *Client {
	httpClient := newHTTPClient(oauthAPItoken)
	return &Client{
		restClt:    github.NewClient(httpClient),
		graphQLClt: githubv4.NewClient(httpClient),
		logger:     zap.L().Named(loggerName),
		hasToken:   oauthAPItoken != "",
	}
}

// NewEnterprise returns a github api client for a GitHub Enterprise Server
// instance. baseURL is the REST API endpoint, e.g.
// https://github.example.com/api/v3/.
func NewEnterprise(baseURL, oauthAPItoken string) (*Client, error) {
	httpClient := newHTTPClient(oauthAPItoken)

	restClt, err := github.NewClient(httpClient).WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing github api url failed: %w", err)
	}

	return &Client{
		restClt:    restClt,
		graphQLClt: githubv4.NewEnterpriseClient(graphQLURL(restClt.BaseURL.String()), httpClient),
		logger:     zap.L().Named(loggerName),
		hasToken:   oauthAPItoken != "",
	}, nil
}

// graphQLURL returns the GraphQL endpoint that belongs to an enterprise REST
// API URL.
func graphQLURL(restURL string) string {
	u := strings.TrimSuffix(restURL, "/")
	if strings.HasSuffix(u, "/api/v3") {
		return strings.TrimSuffix(u, "/v3") + "/graphql"
	}

	return u + "/graphql"
}

func newHTTPClient(apiToken string) *http.Client {
	if apiToken == "" {
		return &http.Client{
			Timeout: DefaultHTTPClientTimeout,
		}
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: apiToken},
	)

	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = DefaultHTTPClientTimeout

	return tc
}

// Client is an github API client.
// All methods return a toolerr.RemoteRequestFailedError when a request did
// not succeed. If the operation can be retried, e.g. because the API
// ratelimit is exceeded, the error additionally wraps a
// toolerr.RetryableError.
type Client struct {
	restClt    *github.Client
	graphQLClt *githubv4.Client
	logger     *zap.Logger
	hasToken   bool
}

// HasToken returns true if the client sends authenticated requests.
func (clt *Client) HasToken() bool {
	return clt.hasToken
}

// ResolveRef returns the SHA of the commit that ref (a branch, tag or commit)
// points to.
func (clt *Client) ResolveRef(ctx context.Context, owner, repo, ref string) (string, error) {
	sha, _, err := clt.restClt.Repositories.GetCommitSHA1(ctx, owner, repo, ref, "")
	if err != nil {
		return "", clt.wrapErrors(fmt.Sprintf("resolving ref %q", ref), err)
	}

	sha = strings.TrimSpace(sha)
	if sha == "" {
		return "", fmt.Errorf("github returned an empty sha for ref %q", ref)
	}

	clt.logger.Debug(
		"resolved ref",
		logfields.Event("github_ref_resolved"),
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.Ref(ref),
		logfields.Commit(sha),
	)

	return sha, nil
}

// IssueTitle returns the title of an issue or pull request.
func (clt *Client) IssueTitle(ctx context.Context, owner, repo string, issueOrPRNr int) (string, error) {
	issue, _, err := clt.restClt.Issues.Get(ctx, owner, repo, issueOrPRNr)
	if err != nil {
		return "", clt.wrapErrors(fmt.Sprintf("fetching issue #%d", issueOrPRNr), err)
	}

	return issue.GetTitle(), nil
}

// PullRequestBaseHead returns the SHAs of the base and head commits of a
// pull request.
func (clt *Client) PullRequestBaseHead(ctx context.Context, owner, repo string, prNumber int) (base, head string, err error) {
	var q struct {
		Repository struct {
			PullRequest struct {
				BaseRefOid githubv4.GitObjectID
				HeadRefOid githubv4.GitObjectID
			} `graphql:"pullRequest(number: $prNumber)"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}

	vars := map[string]any{
		"owner":    githubv4.String(owner),
		"repo":     githubv4.String(repo),
		"prNumber": githubv4.Int(prNumber),
	}

	err = clt.graphQLClt.Query(ctx, &q, vars)
	if err != nil {
		return "", "", clt.wrapGraphQLErrors(fmt.Sprintf("fetching pull request #%d", prNumber), err)
	}

	base = string(q.Repository.PullRequest.BaseRefOid)
	head = string(q.Repository.PullRequest.HeadRefOid)

	if base == "" || head == "" {
		return "", "", fmt.Errorf("got pull request object with empty base (%q) or head (%q) oid", base, head)
	}

	return base, head, nil
}

// BranchIterator iterates over branches of a repository.
type BranchIterator interface {
	Next() (*github.Branch, error)
}

type BranchIter struct {
	clt *Client

	ctx   context.Context
	owner string
	repo  string

	unseen []*github.Branch

	nextPage int
	finished bool
}

// Next returns the next branch.
// When the last result was returned a nil Branch is returned.
// Pages are requested lazily, the iterator follows the next links of the
// responses until no next page is announced.
func (it *BranchIter) Next() (*github.Branch, error) {
	if len(it.unseen) > 0 {
		result := it.unseen[0]
		it.unseen = it.unseen[1:]

		return result, nil
	}

	if it.finished {
		return nil, nil
	}

	protected := true
	branches, resp, err := it.clt.restClt.Repositories.ListBranches(it.ctx, it.owner, it.repo, &github.BranchListOptions{
		Protected: &protected,
		ListOptions: github.ListOptions{
			Page:    it.nextPage,
			PerPage: 100,
		},
	})
	if err != nil {
		return nil, it.clt.wrapErrors("listing protected branches", err)
	}

	if resp.NextPage == 0 || len(branches) == 0 {
		it.finished = true
	} else {
		it.nextPage = resp.NextPage
	}

	it.unseen = branches

	return it.Next()
}

// ListProtectedBranches returns an iterator for receiving all protected
// branches of a repository.
func (clt *Client) ListProtectedBranches(ctx context.Context, owner, repo string) BranchIterator { // interface is returned to make the method mockable
	return &BranchIter{
		clt:      clt,
		ctx:      ctx,
		owner:    owner,
		repo:     repo,
		nextPage: 1,
	}
}

func statusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}

	return resp.StatusCode
}

func (clt *Client) wrapErrors(operation string, err error) error {
	var code int

	switch v := err.(type) {
	case *github.RateLimitError:
		clt.logger.Info(
			"rate limit exceeded",
			logfields.Event("github_api_rate_limit_exceeded"),
			zap.Int("github_api_rate_limit", v.Rate.Limit),
			zap.Time("github_api_rate_limit_reset_time", v.Rate.Reset.Time),
		)

		if v.Response != nil {
			code = v.Response.StatusCode
		}

		err = toolerr.NewRetryableError(err, v.Rate.Reset.Time)

	case *github.AbuseRateLimitError:
		if v.Response != nil {
			code = v.Response.StatusCode
		}

		if v.RetryAfter != nil {
			err = toolerr.NewRetryableError(err, time.Now().Add(*v.RetryAfter))
		} else {
			err = toolerr.NewRetryableAnytimeError(err)
		}

	case *github.ErrorResponse:
		if v.Response != nil {
			code = v.Response.StatusCode
		}

		if code == http.StatusTooManyRequests || (code >= 500 && code < 600) {
			err = toolerr.NewRetryableAnytimeError(err)
		}
	}

	return toolerr.NewRemoteRequestFailedError(serviceName, operation, code, err)
}

var graphQlHTTPStatusErrRe = regexp.MustCompile(`^non-200 OK status code: ([0-9]+) .*`)

func (clt *Client) wrapGraphQLErrors(operation string, err error) error {
	return toolerr.NewRemoteRequestFailedError(
		serviceName,
		operation,
		clt.graphQLStatusCode(err),
		clt.wrapGraphQLRetryableErrors(err),
	)
}

func (clt *Client) graphQLStatusCode(err error) int {
	matches := graphQlHTTPStatusErrRe.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	errcode, atoiErr := strconv.Atoi(matches[1])
	if atoiErr != nil {
		clt.logger.Info(
			"parsing http code from error string failed",
			zap.Error(atoiErr),
			zap.String("error_string", err.Error()),
			zap.String("http_errcode", matches[1]),
		)
		return 0
	}

	return errcode
}

func (clt *Client) wrapGraphQLRetryableErrors(err error) error {
	errcode := clt.graphQLStatusCode(err)
	if errcode == http.StatusTooManyRequests || (errcode >= 500 && errcode < 600) {
		return toolerr.NewRetryableAnytimeError(err)
	}

	return err
}

// IsNotFound returns true if err was caused by a 404 response.
func IsNotFound(err error) bool {
	var reqErr *toolerr.RemoteRequestFailedError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == http.StatusNotFound
	}

	return false
}

// IsRateLimited returns true if err was caused by an exceeded API rate limit.
func IsRateLimited(err error) bool {
	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}

	var reqErr *toolerr.RemoteRequestFailedError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == http.StatusTooManyRequests
	}

	return false
}
