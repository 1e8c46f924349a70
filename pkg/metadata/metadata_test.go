package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igsaved/pkg/models"
)

var downloadedAt = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func TestHashtagsAndMentions(t *testing.T) {
	caption := "Hello #world #world @alice"

	assert.Equal(t, []string{"world"}, Hashtags(caption))
	assert.Equal(t, []string{"alice"}, Mentions(caption))
}

func TestHashtagsEdgeCases(t *testing.T) {
	tests := []struct {
		caption  string
		hashtags []string
		mentions []string
	}{
		{"", []string{}, []string{}},
		{"no tags here", []string{}, []string{}},
		{"#go_lang #Go #go_lang", []string{"Go", "go_lang"}, []string{}},
		{"@bob, @carol! @bob", []string{}, []string{"bob", "carol"}},
		{"café #crème @zoë", []string{"crème"}, []string{"zoë"}},
		{"#2024 #", []string{"2024"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			assert.Equal(t, tt.hashtags, Hashtags(tt.caption))
			assert.Equal(t, tt.mentions, Mentions(tt.caption))
		})
	}
}

func TestExtractPhoto(t *testing.T) {
	post := models.Post{
		ID:           "3141",
		Code:         "CxYz",
		Owner:        models.Owner{ID: "99", Username: "alice"},
		Caption:      "Sunset #beach with @bob",
		TakenAt:      time.Date(2023, 8, 15, 18, 0, 0, 0, time.UTC),
		LikeCount:    120,
		CommentCount: 4,
		ProductType:  "feed",
		Media:        models.Photo{URL: "https://cdn/p.jpg"},
	}

	r := Extract(post, downloadedAt)

	assert.Equal(t, "3141", r.PK)
	assert.Equal(t, models.KindPhoto, r.MediaType)
	assert.Equal(t, "Photo", r.MediaTypeName)
	assert.Equal(t, "alice", r.Username)
	assert.Equal(t, "99", r.UserID)
	assert.Equal(t, "2023-08-15T18:00:00Z", r.TakenAt)
	assert.Equal(t, 120, r.LikeCount)
	assert.Equal(t, 4, r.CommentCount)
	assert.Equal(t, "CxYz", r.Code)
	assert.Equal(t, []string{"beach"}, r.Hashtags)
	assert.Equal(t, []string{"bob"}, r.Mentions)
	assert.Equal(t, "2024-06-01T09:30:00Z", r.DownloadedAt)
	assert.Nil(t, r.CarouselCount)
	assert.Nil(t, r.Audio)
	assert.Nil(t, r.Location)
}

func TestExtractDefaults(t *testing.T) {
	r := Extract(models.Post{ID: "1", Media: models.Unknown{Code: 7}}, downloadedAt)

	assert.Equal(t, "unknown", r.Username)
	assert.Equal(t, "", r.UserID)
	assert.Equal(t, "", r.Caption)
	assert.Equal(t, "", r.TakenAt)
	assert.Equal(t, 7, r.MediaType)
	assert.Equal(t, "Unknown", r.MediaTypeName)
	assert.NotNil(t, r.Hashtags)
	assert.NotNil(t, r.Mentions)
}

func TestExtractAlbumCarouselCount(t *testing.T) {
	resources := make([]models.Resource, 5)
	for i := range resources {
		resources[i] = models.Resource{Kind: models.ResourcePhoto, URL: "u"}
	}

	album := Extract(models.Post{ID: "8", Media: models.Album{Resources: resources}}, downloadedAt)
	require.NotNil(t, album.CarouselCount)
	assert.Equal(t, 5, *album.CarouselCount)
	assert.Equal(t, "Album/Carousel", album.MediaTypeName)

	photo := Extract(models.Post{ID: "1", Media: models.Photo{}}, downloadedAt)
	assert.Nil(t, photo.CarouselCount)
}

func TestExtractVideoAudio(t *testing.T) {
	tests := []struct {
		name  string
		audio *models.Audio
		want  *Audio
	}{
		{
			name:  "original sound",
			audio: &models.Audio{ID: "55", Title: "original audio", Artist: "alice", Source: models.AudioOriginal},
			want:  &Audio{AudioID: "55", OriginalAudioTitle: "original audio"},
		},
		{
			name:  "licensed music uses artist",
			audio: &models.Audio{ID: "77", Title: "Song", Artist: "Band", Source: models.AudioMusic},
			want:  &Audio{AudioID: "77", OriginalAudioTitle: "Band"},
		},
		{
			name:  "untitled original sound",
			audio: &models.Audio{ID: "56", Artist: "alice", Source: models.AudioOriginal},
			want:  &Audio{AudioID: "56", OriginalAudioTitle: ""},
		},
		{
			name:  "music without artist",
			audio: &models.Audio{ID: "78", Title: "Song", Source: models.AudioMusic},
			want:  &Audio{AudioID: "78", OriginalAudioTitle: ""},
		},
		{
			name: "no audio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Extract(models.Post{ID: "2", Media: models.Video{URL: "v", Audio: tt.audio}}, downloadedAt)
			assert.Equal(t, tt.want, r.Audio)
			assert.Equal(t, "Video/Reel", r.MediaTypeName)
		})
	}
}

func TestExtractAudioOnlyForVideo(t *testing.T) {
	// Audio is carried by the Video variant only, so albums never get one
	r := Extract(models.Post{ID: "3", Media: models.Album{}}, downloadedAt)
	assert.Nil(t, r.Audio)
}

func TestExtractLocation(t *testing.T) {
	post := models.Post{
		ID:       "4",
		Media:    models.Photo{},
		Location: &models.Location{Name: "Louvre", City: "Paris"},
	}

	r := Extract(post, downloadedAt)
	require.NotNil(t, r.Location)
	assert.Equal(t, "Louvre", r.Location.Name)
	assert.Equal(t, "Paris", r.Location.City)
}

func TestWriterSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "metadata")
	w, err := NewWriter(dir)
	require.NoError(t, err)

	post := models.Post{
		ID:      "3141",
		Caption: "Crème brûlée <3 #dessert",
		Media:   models.Album{Resources: []models.Resource{{}, {}}},
	}

	path, err := w.Save(Extract(post, downloadedAt))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "3141.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "Crème brûlée <3", "non-ASCII and HTML characters are written literally")
	assert.True(t, strings.HasPrefix(text, "{\n  \"pk\": \"3141\""), "pretty-printed with two-space indent")
	assert.Contains(t, text, `"carousel_count": 2`)
	assert.NotContains(t, text, `"audio"`)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"dessert"}, loaded.Hashtags)
}

func TestWriterSaveFailure(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	_, err = w.Save(Record{PK: "1"})
	assert.Error(t, err)

	_, err = w.Save(Record{})
	assert.Error(t, err)
}
