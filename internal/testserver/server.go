// Package testserver is an in-memory stand-in for the Instagram private API
// and its CDN, for end-to-end tests of the real client.
package testserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"igsaved/pkg/models"
)

// Username is the account every valid session belongs to
const Username = "saver"

// Post describes a saved post served by the fake API
type Post struct {
	ID      string
	Owner   string
	Kind    int
	Caption string
	TakenAt int64
	// Items is the number of album children; ignored for other kinds
	Items int
	// Collection puts the post in a named collection as well as in the
	// all-posts feed
	Collection string
}

// Server simulates the private API endpoints with pagination, a session
// check and injectable failures
type Server struct {
	server   *httptest.Server
	session  string
	pageSize int

	mu          sync.RWMutex
	posts       []Post
	collections map[string]string
	failures    map[string]int
	requests    map[string]int
}

// New starts a server accepting sessionID
func New(sessionID string) *Server {
	s := &Server{
		session:     sessionID,
		pageSize:    2,
		collections: make(map[string]string),
		failures:    make(map[string]int),
		requests:    make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/accounts/current_user/", s.authenticated(s.handleCurrentUser))
	mux.HandleFunc("/api/v1/collections/list/", s.authenticated(s.handleCollections))
	mux.HandleFunc("/api/v1/feed/saved/posts/", s.authenticated(s.handleFeed))
	mux.HandleFunc("/api/v1/feed/collection/", s.authenticated(s.handleFeed))
	mux.HandleFunc("/api/v1/media/", s.authenticated(s.handleMediaInfo))
	mux.HandleFunc("/cdn/", s.handleCDN)

	s.server = httptest.NewServer(s.count(mux))
	return s
}

// URL is the base URL to configure the client with
func (s *Server) URL() string { return s.server.URL }

// Close shuts the server down
func (s *Server) Close() { s.server.Close() }

// AddPost appends a post to the saved feed, newest last
func (s *Server) AddPost(p Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, p)
}

// AddCollection registers a named collection
func (s *Server) AddCollection(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[id] = name
}

// Fail makes every request to path answer with status. Status 0 clears it.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, path)
		return
	}
	s.failures[path] = status
}

// Requests returns how many requests hit path
func (s *Server) Requests(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests[path]
}

// CDNPath is the download path of the n-th file of a post, counting from 1
func CDNPath(postID string, n int, ext string) string {
	return fmt.Sprintf("/cdn/%s_%d.%s", postID, n, ext)
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.URL.Path]++
		status := s.failures[r.URL.Path]
		s.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]interface{}{"status": "fail", "message": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("sessionid")
		if err != nil || cookie.Value != s.session {
			writeJSON(w, http.StatusForbidden, map[string]interface{}{"status": "fail", "message": "login_required"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"user":   map[string]interface{}{"pk": 4242, "username": Username, "full_name": "Saver"},
	})
}

func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]map[string]interface{}, 0, len(s.collections))
	for id, name := range s.collections {
		count := 0
		for _, p := range s.posts {
			if p.Collection == id {
				count++
			}
		}
		items = append(items, map[string]interface{}{
			"collection_id":          id,
			"collection_name":        name,
			"collection_type":        "MEDIA",
			"collection_media_count": count,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "status": "ok"})
}

// handleFeed serves newest-first pages; max_id is the offset of the page
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	collection := ""
	if rest, ok := strings.CutPrefix(r.URL.Path, "/api/v1/feed/collection/"); ok {
		collection = strings.TrimSuffix(rest, "/posts/")
	}

	s.mu.RLock()
	var feed []Post
	for i := len(s.posts) - 1; i >= 0; i-- {
		if collection == "" || s.posts[i].Collection == collection {
			feed = append(feed, s.posts[i])
		}
	}
	s.mu.RUnlock()

	offset, _ := strconv.Atoi(r.URL.Query().Get("max_id"))
	if offset > len(feed) {
		offset = len(feed)
	}
	end := offset + s.pageSize
	if end > len(feed) {
		end = len(feed)
	}

	items := make([]map[string]interface{}, 0, end-offset)
	for _, p := range feed[offset:end] {
		items = append(items, map[string]interface{}{"media": map[string]interface{}{"pk": p.ID}})
	}
	resp := map[string]interface{}{
		"items":          items,
		"more_available": end < len(feed),
		"status":         "ok",
	}
	if end < len(feed) {
		resp["next_max_id"] = strconv.Itoa(end)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMediaInfo(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v1/media/"), "/info/")

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"items":  []interface{}{s.media(p)},
				"status": "ok",
			})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]interface{}{"status": "fail", "message": "Media not found"})
}

func (s *Server) media(p Post) map[string]interface{} {
	m := map[string]interface{}{
		"pk":         p.ID,
		"code":       "C" + p.ID,
		"media_type": p.Kind,
		"taken_at":   p.TakenAt,
		"user":       map[string]interface{}{"pk": "9" + p.ID, "username": p.Owner},
	}
	if p.Caption != "" {
		m["caption"] = map[string]interface{}{"text": p.Caption}
	}

	switch p.Kind {
	case models.KindPhoto:
		m["image_versions2"] = s.images(CDNPath(p.ID, 1, "jpg"))
	case models.KindVideo:
		m["product_type"] = "clips"
		m["video_versions"] = []interface{}{s.candidate(CDNPath(p.ID, 1, "mp4"))}
	case models.KindAlbum:
		children := make([]interface{}, 0, p.Items)
		for n := 1; n <= p.Items; n++ {
			children = append(children, map[string]interface{}{
				"pk":              fmt.Sprintf("%s%d", p.ID, n),
				"media_type":      models.KindPhoto,
				"image_versions2": s.images(CDNPath(p.ID, n, "jpg")),
			})
		}
		m["carousel_media"] = children
	}
	return m
}

func (s *Server) images(path string) map[string]interface{} {
	return map[string]interface{}{"candidates": []interface{}{s.candidate(path)}}
}

func (s *Server) candidate(path string) map[string]interface{} {
	return map[string]interface{}{"url": s.server.URL + path, "width": 1080, "height": 1080}
}

// handleCDN serves the file name itself as the media body
func (s *Server) handleCDN(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write([]byte("media:" + strings.TrimPrefix(r.URL.Path, "/cdn/")))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
