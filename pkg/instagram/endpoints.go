package instagram

import (
	"fmt"
	"net/url"
)

const (
	// BaseURL is the private API host used by the mobile apps
	BaseURL = "https://i.instagram.com"

	// AppID identifies the web client to the private API
	AppID = "936619743392459"

	CurrentUserEndpoint     = "/api/v1/accounts/current_user/"
	CollectionsEndpoint     = "/api/v1/collections/list/"
	SavedPostsEndpoint      = "/api/v1/feed/saved/posts/"
	CollectionPostsEndpoint = "/api/v1/feed/collection/%s/posts/"
	MediaInfoEndpoint       = "/api/v1/media/%s/info/"

	// AllPostsCollection is the pseudo collection ID for every saved post
	AllPostsCollection = ""
)

// CurrentUserURL returns the URL used to validate a session
func CurrentUserURL(base string) string {
	return base + CurrentUserEndpoint + "?edit=true"
}

// CollectionsURL returns the URL listing saved collections
func CollectionsURL(base string) string {
	params := url.Values{}
	params.Set("collection_types", `["ALL_MEDIA_AUTO_COLLECTION","MEDIA","AUDIO_AUTO_COLLECTION"]`)
	return base + CollectionsEndpoint + "?" + params.Encode()
}

// SavedPostsURL returns a page URL for a collection, or for every saved post
// when collectionID is empty. An empty cursor requests the first page.
func SavedPostsURL(base, collectionID, cursor string) string {
	path := SavedPostsEndpoint
	if collectionID != AllPostsCollection {
		path = fmt.Sprintf(CollectionPostsEndpoint, url.PathEscape(collectionID))
	}
	if cursor == "" {
		return base + path
	}

	params := url.Values{}
	params.Set("max_id", cursor)
	return base + path + "?" + params.Encode()
}

// MediaInfoURL returns the URL for a single post's details
func MediaInfoURL(base, mediaID string) string {
	return base + fmt.Sprintf(MediaInfoEndpoint, url.PathEscape(mediaID))
}
