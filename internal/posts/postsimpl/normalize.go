package postsimpl

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/orgball2608/fb-post-manager/internal/domain"
)

// CreatedTimeLayout is the Graph API timestamp once its UTC offset is removed.
const CreatedTimeLayout = "2006-01-02T15:04:05"

var utcOffsetSuffix = regexp.MustCompile(`[+-]?[0-9]{4}$`)

// StripUTCOffset removes a trailing four digit UTC offset such as "+0000".
// The offset is dropped, never applied.
func StripUTCOffset(raw string) string {
	return utcOffsetSuffix.ReplaceAllString(raw, "")
}

func ParseCreatedTime(raw string) (time.Time, error) {
	t, err := time.Parse(CreatedTimeLayout, StripUTCOffset(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_time %q: %w", raw, err)
	}
	return t, nil
}

// StripPagePrefix turns "{pageID}_{postID}" into postID. Other ids are returned unchanged.
func StripPagePrefix(pageID, id string) string {
	if pageID == "" {
		return id
	}
	return strings.TrimPrefix(id, pageID+"_")
}

// NormalizePost fills PostID, CreatedTime and ViewCount of p in place.
// A post without an insight gets a view count of 0 and found is false.
func NormalizePost(p *domain.Post, pageID string, insights domain.Insights) (found bool, err error) {
	p.PostID = StripPagePrefix(pageID, p.ID)

	created, err := ParseCreatedTime(p.RawCreatedTime)
	if err != nil {
		return false, err
	}
	p.CreatedTime = created

	insight, ok := insights[p.ID]
	if !ok {
		p.ViewCount = 0
		return false, nil
	}
	p.ViewCount, found = insight.FirstValue()
	return found, nil
}
