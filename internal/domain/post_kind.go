package domain

import "fmt"

type PostKind string

const (
	PostKindStatus PostKind = "status"
	PostKindLink   PostKind = "link"
	PostKindPhoto  PostKind = "photo"
	PostKindVideo  PostKind = "video"
)

var PostKinds = []PostKind{PostKindStatus, PostKindLink, PostKindPhoto, PostKindVideo}

// Edge is the page connection a post of this kind is created on.
func (k PostKind) Edge() string {
	switch k {
	case PostKindPhoto:
		return "photos"
	case PostKindVideo:
		return "videos"
	default:
		return "feed"
	}
}

// Title is the label used on forms, e.g. "Link".
func (k PostKind) Title() string {
	switch k {
	case PostKindStatus:
		return "Status"
	case PostKindLink:
		return "Link"
	case PostKindPhoto:
		return "Photo"
	case PostKindVideo:
		return "Video"
	}
	return string(k)
}

func ParsePostKind(s string) (PostKind, error) {
	for _, k := range PostKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown post kind %q", s)
}
