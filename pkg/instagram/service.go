package instagram

import (
	"context"
	"io"

	"igsaved/pkg/models"
)

// Page is one page of a saved-posts feed
type Page struct {
	IDs           []string
	NextCursor    string
	MoreAvailable bool
}

// Service is the remote media service consumed by the exporter. Every call
// may fail; callers only distinguish success from failure, except that
// Login failures are fatal.
//
//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=mocks/mock.go -package=mocks
type Service interface {
	// Login validates sessionID and binds it to the service
	Login(ctx context.Context, sessionID string) (*models.User, error)
	// ListCollections returns every saved collection in one request
	ListCollections(ctx context.Context) ([]models.Collection, error)
	// ListPosts returns one page of post IDs; collectionID "" means all saved posts
	ListPosts(ctx context.Context, collectionID, cursor string) (Page, error)
	// PostInfo returns the full details of one post
	PostInfo(ctx context.Context, id string) (models.Post, error)
	// Download opens a media URL for reading
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

var _ Service = (*Client)(nil)
