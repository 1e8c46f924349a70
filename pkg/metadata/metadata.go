package metadata

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set"
	json "github.com/goccy/go-json"

	"igsaved/pkg/models"
	"igsaved/pkg/storage"
)

// Record is the flat metadata document written for each downloaded post
type Record struct {
	PK            string    `json:"pk"`
	MediaType     int       `json:"media_type"`
	MediaTypeName string    `json:"media_type_name"`
	Caption       string    `json:"caption"`
	Username      string    `json:"username"`
	UserID        string    `json:"user_id"`
	TakenAt       string    `json:"taken_at"`
	LikeCount     int       `json:"like_count"`
	CommentCount  int       `json:"comment_count"`
	ProductType   string    `json:"product_type"`
	Code          string    `json:"code"`
	Hashtags      []string  `json:"hashtags"`
	Mentions      []string  `json:"mentions"`
	DownloadedAt  string    `json:"downloaded_at"`
	Audio         *Audio    `json:"audio,omitempty"`
	Location      *Location `json:"location,omitempty"`
	CarouselCount *int      `json:"carousel_count,omitempty"`
}

// Audio describes the sound attached to a video
type Audio struct {
	AudioID            string `json:"audio_id"`
	OriginalAudioTitle string `json:"original_audio_title"`
}

// Location is where the post was tagged
type Location struct {
	Name string `json:"name"`
	City string `json:"city"`
}

var (
	hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	mentionPattern = regexp.MustCompile(`@([\p{L}\p{N}_]+)`)
)

// Extract derives the metadata record for post. downloadedAt is stamped
// into the record as-is.
func Extract(post models.Post, downloadedAt time.Time) Record {
	r := Record{
		PK:            post.ID,
		MediaType:     models.Kind(post.Media),
		MediaTypeName: TypeName(post.Media),
		Caption:       post.Caption,
		Username:      post.OwnerName(),
		UserID:        post.Owner.ID,
		LikeCount:     post.LikeCount,
		CommentCount:  post.CommentCount,
		ProductType:   post.ProductType,
		Code:          post.Code,
		Hashtags:      Hashtags(post.Caption),
		Mentions:      Mentions(post.Caption),
		DownloadedAt:  downloadedAt.Format(time.RFC3339),
	}
	if !post.TakenAt.IsZero() {
		r.TakenAt = post.TakenAt.UTC().Format(time.RFC3339)
	}

	switch m := post.Media.(type) {
	case models.Video:
		if m.Audio != nil {
			r.Audio = &Audio{
				AudioID:            m.Audio.ID,
				OriginalAudioTitle: audioTitle(m.Audio),
			}
		}
	case models.Album:
		n := len(m.Resources)
		r.CarouselCount = &n
	case models.Photo, models.Unknown:
	}

	if post.Location != nil {
		r.Location = &Location{Name: post.Location.Name, City: post.Location.City}
	}

	return r
}

// audioTitle follows the remote's naming: original sounds carry a title,
// licensed music only an artist. A missing value stays empty.
func audioTitle(a *models.Audio) string {
	if a.Source == models.AudioMusic {
		return a.Artist
	}
	return a.Title
}

// TypeName returns the human-readable media type used in records
func TypeName(m models.Media) string {
	switch m.(type) {
	case models.Photo:
		return "Photo"
	case models.Video:
		return "Video/Reel"
	case models.Album:
		return "Album/Carousel"
	default:
		return "Unknown"
	}
}

// Hashtags returns the distinct #tags in text, sorted
func Hashtags(text string) []string {
	return uniqueMatches(hashtagPattern, text)
}

// Mentions returns the distinct @handles in text, sorted
func Mentions(text string) []string {
	return uniqueMatches(mentionPattern, text)
}

func uniqueMatches(re *regexp.Regexp, text string) []string {
	seen := mapset.NewThreadUnsafeSet()
	out := []string{}
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if seen.Add(m[1]) {
			out = append(out, m[1])
		}
	}
	sort.Strings(out)
	return out
}

// Writer saves records into a metadata directory
type Writer struct {
	dir string
}

// NewWriter creates a writer for dir, creating it if needed
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create metadata directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Path returns the file a record for id is written to
func (w *Writer) Path(id string) string {
	return filepath.Join(w.dir, id+".json")
}

// Save writes r to {dir}/{pk}.json, replacing any existing file
func (w *Writer) Save(r Record) (string, error) {
	if r.PK == "" {
		return "", fmt.Errorf("metadata record has no pk")
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(r); err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	path := w.Path(r.PK)
	if _, err := storage.WriteFile(path, &buf); err != nil {
		return "", fmt.Errorf("failed to write metadata file: %w", err)
	}
	return path, nil
}

// Load reads a record from path
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &r, nil
}
