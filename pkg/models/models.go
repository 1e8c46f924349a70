package models

import "time"

// User is the authenticated account.
type User struct {
	ID       string
	Username string
	FullName string
}

// Owner is the author of a post.
type Owner struct {
	ID       string
	Username string
}

// Location is the optional place a post was tagged with.
type Location struct {
	Name string
	City string
}

// Collection is a user-defined named grouping of saved posts.
type Collection struct {
	ID    string
	Name  string
	Type  string
	Count int
}

// Post is a single saved entry. Posts are built from remote responses and never
// mutated afterwards.
type Post struct {
	ID           string
	Code         string
	Owner        Owner
	Caption      string
	TakenAt      time.Time
	LikeCount    int
	CommentCount int
	ProductType  string
	Location     *Location
	Media        Media
}

// OwnerName returns the owner's handle, or "unknown" when the remote omitted it.
func (p Post) OwnerName() string {
	if p.Owner.Username == "" {
		return "unknown"
	}
	return p.Owner.Username
}
