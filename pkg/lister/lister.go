// Package lister pages through the remote service to build the list of
// saved posts to export.
package lister

import (
	"context"

	apperrors "igsaved/pkg/errors"
	"igsaved/pkg/instagram"
	"igsaved/pkg/logger"
	"igsaved/pkg/models"
)

// maxPages bounds a single listing in case the remote keeps handing out
// fresh cursors forever
const maxPages = 10000

// Lister builds candidate post lists from the saved feed
type Lister struct {
	service instagram.Service
	logger  logger.Logger
}

// New creates a Lister over service
func New(service instagram.Service, log logger.Logger) *Lister {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Lister{service: service, logger: log.WithField("component", "lister")}
}

// ListCollections returns every saved collection. The remote answers in a
// single response; there is no pagination.
func (l *Lister) ListCollections(ctx context.Context) ([]models.Collection, error) {
	collections, err := l.service.ListCollections(ctx)
	if err != nil {
		return nil, apperrors.Listing("failed to list collections", err)
	}
	return collections, nil
}

// ListAll returns every saved post
func (l *Lister) ListAll(ctx context.Context) ([]models.Post, error) {
	return l.ListCollection(ctx, instagram.AllPostsCollection, 0)
}

// ListAllLimit returns up to limit saved posts; limit <= 0 means all
func (l *Lister) ListAllLimit(ctx context.Context, limit int) ([]models.Post, error) {
	return l.ListCollection(ctx, instagram.AllPostsCollection, limit)
}

// ListCollection returns the posts of one collection, newest first.
//
// Pages are requested while the remote reports more available and returns a
// cursor; a missing cursor ends the listing. With limit > 0 listing stops as
// soon as limit posts are gathered. A post whose details cannot be fetched is
// logged and skipped. If a page request fails, the posts gathered so far are
// returned together with the error.
func (l *Lister) ListCollection(ctx context.Context, collectionID string, limit int) ([]models.Post, error) {
	log := l.logger.WithFields(map[string]interface{}{
		"collection": collectionLabel(collectionID),
		"limit":      limit,
	})

	var posts []models.Post
	cursor := ""
	seenCursors := make(map[string]bool)

	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return posts, apperrors.Listing("listing cancelled", err)
		}

		result, err := l.service.ListPosts(ctx, collectionID, cursor)
		if err != nil {
			log.WithError(err).WarnWithFields("failed to fetch page", map[string]interface{}{
				"page":     page,
				"gathered": len(posts),
			})
			return posts, apperrors.Listing("failed to fetch saved posts page", err)
		}

		for _, id := range result.IDs {
			post, err := l.service.PostInfo(ctx, id)
			if err != nil {
				log.WithError(err).WarnWithFields("skipping post, details unavailable", map[string]interface{}{
					"post_id": id,
				})
				continue
			}
			posts = append(posts, post)

			if limit > 0 && len(posts) >= limit {
				log.InfoWithFields("limit reached", map[string]interface{}{
					"posts": len(posts),
					"pages": page,
				})
				return posts, nil
			}
		}

		log.DebugWithFields("page listed", map[string]interface{}{
			"page":           page,
			"page_items":     len(result.IDs),
			"gathered":       len(posts),
			"more_available": result.MoreAvailable,
		})

		if !result.MoreAvailable || result.NextCursor == "" {
			break
		}
		if seenCursors[result.NextCursor] {
			log.WarnWithFields("cursor repeated, stopping", map[string]interface{}{
				"cursor": result.NextCursor,
			})
			break
		}
		seenCursors[result.NextCursor] = true
		cursor = result.NextCursor
	}

	log.InfoWithFields("listing complete", map[string]interface{}{
		"posts": len(posts),
	})
	return posts, nil
}

func collectionLabel(id string) string {
	if id == instagram.AllPostsCollection {
		return "all"
	}
	return id
}
