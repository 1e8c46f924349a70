package instagram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"igsaved/pkg/logger"
	"igsaved/pkg/models"
	"igsaved/pkg/ratelimit"
)

// ClientConfig holds the HTTP settings of a Client
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client talks to the Instagram private API with a sessionid cookie
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	limiter    ratelimit.Limiter
	logger     logger.Logger

	mu        sync.RWMutex
	sessionID string
	user      *models.User
}

// NewClient creates a new Instagram API client
func NewClient(cfg ClientConfig, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	headers := map[string]string{
		"Accept":          "*/*",
		"Accept-Language": "en-US,en;q=0.9",
		"X-IG-App-ID":     AppID,
	}
	if cfg.UserAgent != "" {
		headers["User-Agent"] = cfg.UserAgent
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		headers:    headers,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		limiter:    limiter,
		logger:     log.WithField("component", "instagram"),
	}
}

// SetHeader sets a custom header for API requests
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// User returns the account bound by the last successful Login
func (c *Client) User() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Login binds sessionID to the client and validates it against the current
// user endpoint. Any failure is reported as an auth error.
func (c *Client) Login(ctx context.Context, sessionID string) (*models.User, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, &Error{Type: ErrorTypeAuth, Message: "session ID is empty"}
	}

	c.mu.Lock()
	c.sessionID = sessionID
	c.user = nil
	c.mu.Unlock()

	var resp currentUserResponse
	if err := c.getJSON(ctx, CurrentUserURL(c.baseURL), &resp); err != nil {
		c.logger.WithError(err).Warn("session validation failed")
		if igErr, ok := err.(*Error); ok && igErr.Type == ErrorTypeAuth {
			return nil, igErr
		}
		return nil, &Error{Type: ErrorTypeAuth, Message: fmt.Sprintf("could not validate session: %v", err)}
	}

	if resp.User.PK == "" {
		return nil, &Error{Type: ErrorTypeAuth, Message: "session did not resolve to a user", Code: http.StatusOK}
	}

	user := &models.User{
		ID:       string(resp.User.PK),
		Username: resp.User.Username,
		FullName: resp.User.FullName,
	}

	c.mu.Lock()
	c.user = user
	c.mu.Unlock()

	c.logger.InfoWithFields("logged in", map[string]interface{}{
		"username": user.Username,
		"user_id":  user.ID,
	})
	return user, nil
}

// ListCollections returns the account's saved collections
func (c *Client) ListCollections(ctx context.Context) ([]models.Collection, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	var resp collectionsResponse
	if err := c.getJSON(ctx, CollectionsURL(c.baseURL), &resp); err != nil {
		return nil, err
	}

	collections := make([]models.Collection, 0, len(resp.Items))
	for _, item := range resp.Items {
		collections = append(collections, models.Collection{
			ID:    string(item.ID),
			Name:  item.Name,
			Type:  item.Type,
			Count: item.MediaCount,
		})
	}

	c.logger.DebugWithFields("fetched collections", map[string]interface{}{
		"count": len(collections),
	})
	return collections, nil
}

// ListPosts returns one page of saved post IDs
func (c *Client) ListPosts(ctx context.Context, collectionID, cursor string) (Page, error) {
	if err := c.requireSession(); err != nil {
		return Page{}, err
	}

	var resp feedResponse
	if err := c.getJSON(ctx, SavedPostsURL(c.baseURL, collectionID, cursor), &resp); err != nil {
		return Page{}, err
	}

	page := Page{
		IDs:           make([]string, 0, len(resp.Items)),
		NextCursor:    string(resp.NextMaxID),
		MoreAvailable: resp.MoreAvailable,
	}
	for _, item := range resp.Items {
		if item.Media.PK != "" {
			page.IDs = append(page.IDs, string(item.Media.PK))
		}
	}

	c.logger.DebugWithFields("fetched saved page", map[string]interface{}{
		"collection":     collectionID,
		"cursor":         cursor,
		"items":          len(page.IDs),
		"more_available": page.MoreAvailable,
	})
	return page, nil
}

// PostInfo returns the details of one post
func (c *Client) PostInfo(ctx context.Context, id string) (models.Post, error) {
	if err := c.requireSession(); err != nil {
		return models.Post{}, err
	}

	var resp mediaInfoResponse
	if err := c.getJSON(ctx, MediaInfoURL(c.baseURL, id), &resp); err != nil {
		return models.Post{}, err
	}
	if len(resp.Items) == 0 {
		return models.Post{}, &Error{Type: ErrorTypeNotFound, Message: fmt.Sprintf("media %s not found", id), Code: http.StatusOK}
	}

	post := resp.Items[0].toPost()
	if post.ID == "" {
		post.ID = id
	}
	return post, nil
}

// Download opens a CDN media URL. The caller must close the returned body.
func (c *Client) Download(ctx context.Context, mediaURL string) (io.ReadCloser, error) {
	if mediaURL == "" {
		return nil, &Error{Type: ErrorTypeNotFound, Message: "media has no URL"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	if ua := c.headers["User-Agent"]; ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if err := c.checkResponseStatus(resp, nil); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) requireSession() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sessionID == "" {
		return ErrNotLoggedIn
	}
	return nil
}

// apiRequest builds a paced, authenticated API request
func (c *Client) apiRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Type: ErrorTypeNetwork, Message: fmt.Sprintf("request not sent: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	c.mu.RLock()
	sessionID := c.sessionID
	c.mu.RUnlock()

	req.AddCookie(&http.Cookie{Name: "sessionid", Value: sessionID})
	if uid := userIDFromSession(sessionID); uid != "" {
		req.AddCookie(&http.Cookie{Name: "ds_user_id", Value: uid})
	}
	return req, nil
}

// do sends req and logs the exchange
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    redact(req.URL),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      redact(req.URL),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      redact(req.URL),
		"status":   resp.StatusCode,
		"duration": duration,
	})
	return resp, nil
}

// getJSON performs an API GET and decodes the JSON response into target
func (c *Client) getJSON(ctx context.Context, rawURL string, target interface{}) error {
	req, err := c.apiRequest(ctx, rawURL)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := c.checkResponseStatus(resp, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          redact(req.URL),
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview(body),
		})
		return &Error{
			Type:    ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

type apiStatus struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// checkResponseStatus maps HTTP statuses to typed errors. body may be nil.
func (c *Client) checkResponseStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var status apiStatus
	if len(body) > 0 {
		_ = json.Unmarshal(body, &status)
	}

	fields := map[string]interface{}{
		"status": resp.StatusCode,
		"url":    redact(resp.Request.URL),
	}
	if status.Message != "" {
		fields["api_message"] = status.Message
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		status.Message == "login_required",
		status.Message == "checkpoint_required":
		c.logger.WarnWithFields("authentication error", fields)
		msg := "authentication required"
		if status.Message != "" {
			msg = status.Message
		}
		return &Error{Type: ErrorTypeAuth, Message: msg, Code: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", fields)
		return &Error{Type: ErrorTypeNotFound, Message: "resource not found", Code: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", fields)
		return &Error{Type: ErrorTypeRateLimit, Message: "rate limit exceeded", Code: resp.StatusCode}
	case resp.StatusCode >= 500:
		c.logger.ErrorWithFields("server error", fields)
		return &Error{Type: ErrorTypeServerError, Message: "server error", Code: resp.StatusCode}
	default:
		c.logger.ErrorWithFields("unexpected API error", fields)
		return &Error{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}
}

// userIDFromSession extracts the numeric account ID that prefixes a sessionid
// cookie ("12345%3Aabc..." or "12345:abc...")
func userIDFromSession(sessionID string) string {
	decoded, err := url.QueryUnescape(sessionID)
	if err != nil {
		decoded = sessionID
	}
	end := 0
	for end < len(decoded) && decoded[end] >= '0' && decoded[end] <= '9' {
		end++
	}
	if end == 0 || end == len(decoded) || decoded[end] != ':' {
		return ""
	}
	return decoded[:end]
}

// redact drops query strings, which carry signed CDN tokens
func redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	c.RawQuery = ""
	return c.String()
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
