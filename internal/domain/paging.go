package domain

// Cursors holds the opaque before/after cursors of a Graph API page.
type Cursors struct {
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// Paging is the paging object of a Graph API connection response.
// Next and Previous are full URLs and are empty when absent.
type Paging struct {
	Cursors  *Cursors `json:"cursors,omitempty"`
	Next     string   `json:"next,omitempty"`
	Previous string   `json:"previous,omitempty"`
}

func (p Paging) HasNextURL() bool {
	return p.Next != ""
}

func (p Paging) HasPreviousURL() bool {
	return p.Previous != ""
}

// PageNav tells a listing which neighbour pages can be linked.
type PageNav struct {
	Current  int
	Next     int
	HasNext  bool
	Previous int
	HasPrev  bool
}
