package models

// Remote media type codes.
const (
	KindPhoto = 1
	KindVideo = 2
	KindAlbum = 8
)

// Media is the type-specific payload of a post. The set of implementations is
// closed: Photo, Video, Album and Unknown.
type Media interface {
	media()
}

// Photo is a single image.
type Photo struct {
	URL string
}

// Video is a single clip with an optional audio reference.
type Video struct {
	URL   string
	Audio *Audio
}

// Album is a carousel of photos and videos.
type Album struct {
	Resources []Resource
}

// Unknown carries a media type code the exporter does not handle.
type Unknown struct {
	Code int
}

func (Photo) media()   {}
func (Video) media()   {}
func (Album) media()   {}
func (Unknown) media() {}

// ResourceKind distinguishes album items.
type ResourceKind string

const (
	ResourcePhoto ResourceKind = "photo"
	ResourceVideo ResourceKind = "video"
)

// Resource is one item of an album.
type Resource struct {
	ID   string
	Kind ResourceKind
	URL  string
}

// AudioSource records where an audio reference came from.
type AudioSource string

const (
	AudioOriginal AudioSource = "original_sound"
	AudioMusic    AudioSource = "music"
)

// Audio is the sound attached to a video.
type Audio struct {
	ID     string
	Title  string
	Artist string
	Source AudioSource
}

// Kind returns the remote numeric type code of m.
func Kind(m Media) int {
	switch v := m.(type) {
	case Photo:
		return KindPhoto
	case Video:
		return KindVideo
	case Album:
		return KindAlbum
	case Unknown:
		return v.Code
	default:
		return 0
	}
}

// KindName returns a lowercase label for m.
func KindName(m Media) string {
	switch m.(type) {
	case Photo:
		return "photo"
	case Video:
		return "video"
	case Album:
		return "album"
	default:
		return "unknown"
	}
}
