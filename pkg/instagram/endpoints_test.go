package instagram

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavedPostsURL(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		cursor     string
		expected   string
	}{
		{"all first page", "", "", BaseURL + "/api/v1/feed/saved/posts/"},
		{"all next page", "", "QVFE_x", BaseURL + "/api/v1/feed/saved/posts/?max_id=QVFE_x"},
		{"collection first page", "1789", "", BaseURL + "/api/v1/feed/collection/1789/posts/"},
		{"collection cursor escaped", "1789", "a b&c", BaseURL + "/api/v1/feed/collection/1789/posts/?max_id=a+b%26c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SavedPostsURL(BaseURL, tt.collection, tt.cursor)
			assert.Equal(t, tt.expected, result)

			_, err := url.Parse(result)
			assert.NoError(t, err)
		})
	}
}

func TestOtherURLs(t *testing.T) {
	assert.Equal(t, BaseURL+"/api/v1/accounts/current_user/?edit=true", CurrentUserURL(BaseURL))
	assert.Equal(t, BaseURL+"/api/v1/media/3141/info/", MediaInfoURL(BaseURL, "3141"))

	u, err := url.Parse(CollectionsURL(BaseURL))
	require.NoError(t, err)
	assert.Equal(t, CollectionsEndpoint, u.Path)
	assert.Contains(t, u.Query().Get("collection_types"), "MEDIA")
}
