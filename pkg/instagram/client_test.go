package instagram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igsaved/pkg/logger"
	"igsaved/pkg/models"
)

const testSession = "1234567%3AabcDEF%3A12"

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:   server.URL,
		UserAgent: "igsaved-test",
		Timeout:   5 * time.Second,
	}, nil, logger.NewTestLogger())
	return client, server
}

func loggedIn(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	mux.HandleFunc(CurrentUserEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"pk":1234567,"username":"alice","full_name":"Alice"},"status":"ok"}`))
	})
	client, _ := newTestClient(t, mux)
	_, err := client.Login(context.Background(), testSession)
	require.NoError(t, err)
	return client
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(ClientConfig{}, nil, nil)

	assert.Equal(t, BaseURL, client.baseURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.Equal(t, AppID, client.headers["X-IG-App-ID"])
	assert.Nil(t, client.User())
}

func TestLoginSendsSessionCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(CurrentUserEndpoint, func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("sessionid")
		require.NoError(t, err)
		assert.Equal(t, testSession, cookie.Value)

		uid, err := r.Cookie("ds_user_id")
		require.NoError(t, err)
		assert.Equal(t, "1234567", uid.Value)

		assert.Equal(t, AppID, r.Header.Get("X-IG-App-ID"))
		assert.Equal(t, "igsaved-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "true", r.URL.Query().Get("edit"))

		w.Write([]byte(`{"user":{"pk":1234567,"username":"alice","full_name":"Alice A"},"status":"ok"}`))
	})
	client, _ := newTestClient(t, mux)

	user, err := client.Login(context.Background(), "  "+testSession+"\n")
	require.NoError(t, err)
	assert.Equal(t, "1234567", user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice A", user.FullName)
	assert.Equal(t, user, client.User())
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		session string
	}{
		{"empty session", http.StatusOK, "{}", ""},
		{"unauthorized", http.StatusUnauthorized, "", testSession},
		{"login required", http.StatusBadRequest, `{"message":"login_required","status":"fail"}`, testSession},
		{"no user", http.StatusOK, `{"user":{},"status":"ok"}`, testSession},
		{"server error", http.StatusInternalServerError, "", testSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			user, err := client.Login(context.Background(), tt.session)
			assert.Nil(t, user)
			require.Error(t, err)
			assert.True(t, IsAuthError(err), "login failures are auth errors, got %v", err)
		})
	}
}

func TestCallsRequireLogin(t *testing.T) {
	client := NewClient(ClientConfig{}, nil, nil)
	ctx := context.Background()

	_, err := client.ListCollections(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = client.ListPosts(ctx, "", "")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = client.PostInfo(ctx, "1")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestListCollections(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(CollectionsEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[
			{"collection_id":"17890","collection_name":"Recipes","collection_type":"MEDIA","collection_media_count":12},
			{"collection_id":17891,"collection_name":"Travel","collection_type":"MEDIA","collection_media_count":3}
		],"more_available":false,"status":"ok"}`))
	})
	client := loggedIn(t, mux)

	collections, err := client.ListCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Collection{
		{ID: "17890", Name: "Recipes", Type: "MEDIA", Count: 12},
		{ID: "17891", Name: "Travel", Type: "MEDIA", Count: 3},
	}, collections)
}

func TestListPosts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(SavedPostsEndpoint, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("max_id") {
		case "":
			w.Write([]byte(`{"items":[{"media":{"pk":11}},{"media":{"pk":"12"}}],"more_available":true,"next_max_id":"c1"}`))
		case "c1":
			w.Write([]byte(`{"items":[{"media":{"pk":13}}],"more_available":false}`))
		}
	})
	mux.HandleFunc("/api/v1/feed/collection/777/posts/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"media":{"pk":21}}],"more_available":true,"next_max_id":null}`))
	})
	client := loggedIn(t, mux)
	ctx := context.Background()

	first, err := client.ListPosts(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, Page{IDs: []string{"11", "12"}, NextCursor: "c1", MoreAvailable: true}, first)

	second, err := client.ListPosts(ctx, "", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"13"}, second.IDs)
	assert.False(t, second.MoreAvailable)

	coll, err := client.ListPosts(ctx, "777", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"21"}, coll.IDs)
	assert.True(t, coll.MoreAvailable)
	assert.Empty(t, coll.NextCursor)
}

func TestPostInfo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/media/3141/info/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{
			"pk":3141,"code":"CxYz","media_type":1,"product_type":"feed",
			"taken_at":1692122400,"like_count":10,"comment_count":2,
			"caption":{"text":"hi #there"},
			"user":{"pk":99,"username":"bob"},
			"location":{"name":"Louvre","city":"Paris"},
			"image_versions2":{"candidates":[
				{"url":"https://cdn/small.jpg","width":320,"height":320},
				{"url":"https://cdn/large.jpg","width":1080,"height":1080}
			]}
		}]}`))
	})
	mux.HandleFunc("/api/v1/media/0/info/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	})
	client := loggedIn(t, mux)

	post, err := client.PostInfo(context.Background(), "3141")
	require.NoError(t, err)
	assert.Equal(t, "3141", post.ID)
	assert.Equal(t, "bob", post.Owner.Username)
	assert.Equal(t, "99", post.Owner.ID)
	assert.Equal(t, "hi #there", post.Caption)
	assert.Equal(t, time.Unix(1692122400, 0).UTC(), post.TakenAt)
	assert.Equal(t, &models.Location{Name: "Louvre", City: "Paris"}, post.Location)
	assert.Equal(t, models.Photo{URL: "https://cdn/large.jpg"}, post.Media)

	_, err = client.PostInfo(context.Background(), "0")
	var igErr *Error
	require.ErrorAs(t, err, &igErr)
	assert.Equal(t, ErrorTypeNotFound, igErr.Type)
}

func TestCheckResponseStatus(t *testing.T) {
	tests := []struct {
		name         string
		statusCode   int
		body         string
		expectedType ErrorType
	}{
		{"401", http.StatusUnauthorized, "", ErrorTypeAuth},
		{"403", http.StatusForbidden, "", ErrorTypeAuth},
		{"checkpoint", http.StatusBadRequest, `{"message":"checkpoint_required"}`, ErrorTypeAuth},
		{"404", http.StatusNotFound, "", ErrorTypeNotFound},
		{"429", http.StatusTooManyRequests, "", ErrorTypeRateLimit},
		{"502", http.StatusBadGateway, "", ErrorTypeServerError},
		{"418", http.StatusTeapot, "", ErrorTypeUnknown},
		{"bad json", http.StatusOK, "<html>", ErrorTypeParsing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			client := loggedIn(t, mux)
			mux.HandleFunc(CollectionsEndpoint, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			})

			_, err := client.ListCollections(context.Background())
			var igErr *Error
			require.ErrorAs(t, err, &igErr)
			assert.Equal(t, tt.expectedType, igErr.Type)
		})
	}
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := NewClient(ClientConfig{BaseURL: server.URL}, nil, nil)
	server.Close()

	_, err := client.Login(context.Background(), testSession)
	require.Error(t, err)
	assert.True(t, IsAuthError(err))

	_, err = client.Download(context.Background(), server.URL+"/media.jpg")
	var igErr *Error
	require.ErrorAs(t, err, &igErr)
	assert.Equal(t, ErrorTypeNetwork, igErr.Type)
}

func TestDownload(t *testing.T) {
	var cookieSeen atomic.Bool
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("sessionid"); err == nil {
			cookieSeen.Store(true)
		}
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("jpeg bytes"))
	}))

	body, err := client.Download(context.Background(), server.URL+"/photo.jpg?sig=secret")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, "jpeg bytes", string(data))
	assert.False(t, cookieSeen.Load(), "session cookie must not be sent to the CDN")

	_, err = client.Download(context.Background(), server.URL+"/missing.jpg")
	var igErr *Error
	require.ErrorAs(t, err, &igErr)
	assert.Equal(t, ErrorTypeNotFound, igErr.Type)

	_, err = client.Download(context.Background(), "")
	assert.Error(t, err)
}

type countingLimiter struct{ waits atomic.Int32 }

func (l *countingLimiter) Allow() bool { return true }
func (l *countingLimiter) Wait(ctx context.Context) error {
	l.waits.Add(1)
	return ctx.Err()
}

func TestAPIRequestsArePaced(t *testing.T) {
	limiter := &countingLimiter{}
	mux := http.NewServeMux()
	mux.HandleFunc(CurrentUserEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"pk":1,"username":"a"}}`))
	})
	mux.HandleFunc("/cdn.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL}, limiter, nil)
	_, err := client.Login(context.Background(), testSession)
	require.NoError(t, err)

	body, err := client.Download(context.Background(), server.URL+"/cdn.jpg")
	require.NoError(t, err)
	body.Close()

	assert.Equal(t, int32(1), limiter.waits.Load(), "only API calls wait on the limiter")
}

func TestUserIDFromSession(t *testing.T) {
	tests := map[string]string{
		"1234567%3Aabc%3A12": "1234567",
		"1234567:abc":        "1234567",
		"abc%3A123":          "",
		"1234567":            "",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, userIDFromSession(in), in)
	}
}
