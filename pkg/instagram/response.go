package instagram

import (
	"bytes"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"igsaved/pkg/models"
)

// FlexID decodes IDs the API sends either as JSON numbers or as strings
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexID(n.String())
	return nil
}

type currentUserResponse struct {
	User   rawUser `json:"user"`
	Status string  `json:"status"`
}

type rawUser struct {
	PK       FlexID `json:"pk"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type collectionsResponse struct {
	Items []rawCollection `json:"items"`
}

type rawCollection struct {
	ID         FlexID `json:"collection_id"`
	Name       string `json:"collection_name"`
	Type       string `json:"collection_type"`
	MediaCount int    `json:"collection_media_count"`
}

type feedResponse struct {
	Items         []feedItem `json:"items"`
	MoreAvailable bool       `json:"more_available"`
	NextMaxID     FlexID     `json:"next_max_id"`
}

type feedItem struct {
	Media rawMedia `json:"media"`
}

type mediaInfoResponse struct {
	Items []rawMedia `json:"items"`
}

type rawMedia struct {
	PK            FlexID         `json:"pk"`
	Code          string         `json:"code"`
	MediaType     int            `json:"media_type"`
	ProductType   string         `json:"product_type"`
	TakenAt       int64          `json:"taken_at"`
	LikeCount     int            `json:"like_count"`
	CommentCount  int            `json:"comment_count"`
	Caption       *rawCaption    `json:"caption"`
	User          *rawUser       `json:"user"`
	Location      *rawLocation   `json:"location"`
	Images        rawImages      `json:"image_versions2"`
	Videos        []rawCandidate `json:"video_versions"`
	CarouselMedia []rawMedia     `json:"carousel_media"`
	Clips         *rawClipsMeta  `json:"clips_metadata"`
}

type rawCaption struct {
	Text string `json:"text"`
}

type rawLocation struct {
	Name string `json:"name"`
	City string `json:"city"`
}

type rawImages struct {
	Candidates []rawCandidate `json:"candidates"`
}

type rawCandidate struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type rawClipsMeta struct {
	OriginalSound *rawOriginalSound `json:"original_sound_info"`
	Music         *rawMusicInfo     `json:"music_info"`
}

type rawOriginalSound struct {
	AudioAssetID       FlexID `json:"audio_asset_id"`
	OriginalAudioTitle string `json:"original_audio_title"`
	Artist             *struct {
		Username string `json:"username"`
	} `json:"ig_artist"`
}

type rawMusicInfo struct {
	Asset *struct {
		AudioAssetID  FlexID `json:"audio_asset_id"`
		Title         string `json:"title"`
		DisplayArtist string `json:"display_artist"`
	} `json:"music_asset_info"`
}

// toPost converts an API media object into the domain model
func (m rawMedia) toPost() models.Post {
	post := models.Post{
		ID:           string(m.PK),
		Code:         m.Code,
		LikeCount:    m.LikeCount,
		CommentCount: m.CommentCount,
		ProductType:  m.ProductType,
		Media:        m.media(),
	}
	if m.TakenAt > 0 {
		post.TakenAt = time.Unix(m.TakenAt, 0).UTC()
	}
	if m.Caption != nil {
		post.Caption = m.Caption.Text
	}
	if m.User != nil {
		post.Owner = models.Owner{ID: string(m.User.PK), Username: m.User.Username}
	}
	if m.Location != nil {
		post.Location = &models.Location{Name: m.Location.Name, City: m.Location.City}
	}
	return post
}

func (m rawMedia) media() models.Media {
	switch m.MediaType {
	case models.KindPhoto:
		return models.Photo{URL: bestURL(m.Images.Candidates)}
	case models.KindVideo:
		return models.Video{URL: bestURL(m.Videos), Audio: m.audio()}
	case models.KindAlbum:
		resources := make([]models.Resource, 0, len(m.CarouselMedia))
		for i, item := range m.CarouselMedia {
			r := models.Resource{ID: string(item.PK)}
			if r.ID == "" {
				r.ID = string(m.PK) + "_" + strconv.Itoa(i+1)
			}
			if item.MediaType == models.KindVideo {
				r.Kind = models.ResourceVideo
				r.URL = bestURL(item.Videos)
			} else {
				r.Kind = models.ResourcePhoto
				r.URL = bestURL(item.Images.Candidates)
			}
			resources = append(resources, r)
		}
		return models.Album{Resources: resources}
	default:
		return models.Unknown{Code: m.MediaType}
	}
}

// audio prefers the original sound and falls back to licensed music
func (m rawMedia) audio() *models.Audio {
	if m.Clips == nil {
		return nil
	}
	if s := m.Clips.OriginalSound; s != nil {
		a := &models.Audio{
			ID:     string(s.AudioAssetID),
			Title:  s.OriginalAudioTitle,
			Source: models.AudioOriginal,
		}
		if s.Artist != nil {
			a.Artist = s.Artist.Username
		}
		return a
	}
	if mi := m.Clips.Music; mi != nil && mi.Asset != nil {
		return &models.Audio{
			ID:     string(mi.Asset.AudioAssetID),
			Title:  mi.Asset.Title,
			Artist: mi.Asset.DisplayArtist,
			Source: models.AudioMusic,
		}
	}
	return nil
}

// bestURL picks the largest candidate
func bestURL(candidates []rawCandidate) string {
	best := -1
	url := ""
	for _, c := range candidates {
		if c.URL == "" {
			continue
		}
		if area := c.Width * c.Height; area > best {
			best = area
			url = c.URL
		}
	}
	return url
}
