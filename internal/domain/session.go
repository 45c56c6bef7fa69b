package domain

import (
	"time"

	"github.com/orgball2608/fb-post-manager/pkg/errors"
)

// Session is the per-user state carried between requests.
type Session struct {
	ID              string
	UserAccessToken string
	Accounts        []Page
	PageID          string
	PageName        string
	PageAccessToken string
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SelectPage makes the account with the given id the active page.
func (s *Session) SelectPage(id string) (Page, error) {
	for _, account := range s.Accounts {
		if account.ID == id {
			s.PageID = account.ID
			s.PageName = account.Name
			s.PageAccessToken = account.AccessToken
			return account, nil
		}
	}
	return Page{}, errors.Wrap(errors.ErrNotFound, "page "+id+" is not managed by this user")
}

// ActivePage returns the selected page or ErrPageNotSelected.
func (s *Session) ActivePage() (Page, error) {
	if s == nil || s.PageID == "" || s.PageAccessToken == "" {
		return Page{}, errors.ErrPageNotSelected
	}
	return Page{ID: s.PageID, Name: s.PageName, AccessToken: s.PageAccessToken}, nil
}
