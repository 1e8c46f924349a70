// Package fetcher writes a post's media into the output tree.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"igsaved/pkg/instagram"
	"igsaved/pkg/logger"
	"igsaved/pkg/models"
	"igsaved/pkg/storage"
)

// ErrUnsupportedMedia is returned for posts whose media type is not handled
var ErrUnsupportedMedia = errors.New("unsupported media type")

// Result describes what a fetch wrote
type Result struct {
	// Path is the media file, or the album directory for albums
	Path  string
	Files int
	Bytes int64
}

// Fetcher downloads media through a remote service into a storage layout
type Fetcher struct {
	service instagram.Service
	layout  *storage.Layout
	logger  logger.Logger
}

// New creates a Fetcher
func New(service instagram.Service, layout *storage.Layout, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Fetcher{
		service: service,
		layout:  layout,
		logger:  log.WithField("component", "fetcher"),
	}
}

// Fetch downloads the media of post:
//
//	photo  -> photos/{owner}_{id}.jpg
//	video  -> videos/{owner}_{id}.mp4
//	album  -> albums/{id}/{owner}_{id}_{n}.{jpg|mp4}, n counting from 1
//
// Any other media type is logged and reported as ErrUnsupportedMedia.
func (f *Fetcher) Fetch(ctx context.Context, post models.Post) (Result, error) {
	owner := safeName(post.OwnerName())
	id := safeName(post.ID)

	switch m := post.Media.(type) {
	case models.Photo:
		dest := filepath.Join(f.layout.Photos(), fileName(owner, id, m.URL, ".jpg"))
		n, err := f.save(ctx, m.URL, dest)
		if err != nil {
			return Result{}, fmt.Errorf("photo %s: %w", post.ID, err)
		}
		return Result{Path: dest, Files: 1, Bytes: n}, nil

	case models.Video:
		dest := filepath.Join(f.layout.Videos(), fileName(owner, id, m.URL, ".mp4"))
		n, err := f.save(ctx, m.URL, dest)
		if err != nil {
			return Result{}, fmt.Errorf("video %s: %w", post.ID, err)
		}
		return Result{Path: dest, Files: 1, Bytes: n}, nil

	case models.Album:
		return f.fetchAlbum(ctx, post.ID, owner, m)

	default:
		f.logger.WarnWithFields("unsupported media type", map[string]interface{}{
			"post_id":    post.ID,
			"media_type": models.Kind(post.Media),
		})
		return Result{}, fmt.Errorf("post %s (type %d): %w", post.ID, models.Kind(post.Media), ErrUnsupportedMedia)
	}
}

func (f *Fetcher) fetchAlbum(ctx context.Context, postID, owner string, album models.Album) (Result, error) {
	if len(album.Resources) == 0 {
		return Result{}, fmt.Errorf("album %s has no items", postID)
	}

	dir, err := f.layout.AlbumDir(safeName(postID))
	if err != nil {
		return Result{}, err
	}

	res := Result{Path: dir}
	for i, r := range album.Resources {
		itemID := fmt.Sprintf("%s_%d", safeName(postID), i+1)
		ext := ".jpg"
		if r.Kind == models.ResourceVideo {
			ext = ".mp4"
		}

		dest := filepath.Join(dir, fileName(owner, itemID, r.URL, ext))
		n, err := f.save(ctx, r.URL, dest)
		if err != nil {
			return Result{}, fmt.Errorf("album %s item %d: %w", postID, i+1, err)
		}
		res.Files++
		res.Bytes += n
	}
	return res, nil
}

func (f *Fetcher) save(ctx context.Context, mediaURL, dest string) (int64, error) {
	body, err := f.service.Download(ctx, mediaURL)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	n, err := storage.WriteFile(dest, body)
	if err != nil {
		return 0, err
	}

	f.logger.DebugWithFields("media saved", map[string]interface{}{
		"path":  dest,
		"bytes": n,
	})
	return n, nil
}

var knownExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".heic": true,
	".mp4": true, ".mov": true,
}

// fileName builds {owner}_{id}{ext}, taking the extension from the URL
// path when it is a known media type
func fileName(owner, id, mediaURL, fallbackExt string) string {
	ext := fallbackExt
	if u, err := url.Parse(mediaURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); knownExts[e] {
			ext = e
		}
	}
	return owner + "_" + id + ext
}

// safeName keeps a path component from escaping its directory
func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, strings.TrimLeft(s, "."))
}
