package domain

import "time"

// PageSize is the fixed number of posts on one listing page.
const PageSize = 10

// PostFields is the field selection requested for listings.
const PostFields = "id,message,shares,story,is_published,created_time,status_type"

type Shares struct {
	Count int64 `json:"count"`
}

type Post struct {
	ID             string    `json:"id"`           // {page_id}_{post_id} as returned by the Graph API
	PostID         string    `json:"-"`            // ID without the page prefix
	Message        string    `json:"message"`      // Post text
	Story          string    `json:"story"`        // Auto generated story line, e.g. "X shared a link."
	Shares         *Shares   `json:"shares"`       // nil when never shared
	IsPublished    bool      `json:"is_published"` // false for scheduled/dark posts
	StatusType     string    `json:"status_type"`  // mobile_status_update, added_photos, shared_story...
	RawCreatedTime string    `json:"created_time"` // 2024-01-05T10:00:00+0000
	CreatedTime    time.Time `json:"-"`            // RawCreatedTime with the offset dropped
	ViewCount      int64     `json:"-"`            // Unique impressions from insights
}

// ShareCount returns 0 for posts the API reports without a shares object.
func (p *Post) ShareCount() int64 {
	if p.Shares == nil {
		return 0
	}
	return p.Shares.Count
}

// PostList is one page of posts plus its pagination state.
type PostList struct {
	Posts  []Post
	Paging Paging
	Nav    PageNav
}
