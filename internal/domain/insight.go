package domain

type InsightValue struct {
	Value   int64  `json:"value"`
	EndTime string `json:"end_time,omitempty"`
}

// Insight is one metric computed by the Graph API for an object.
type Insight struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Period string         `json:"period"`
	Values []InsightValue `json:"values"`
}

// FirstValue returns the first reported value and whether there was one.
func (i Insight) FirstValue() (int64, bool) {
	if len(i.Values) == 0 {
		return 0, false
	}
	return i.Values[0].Value, true
}

// Insights maps an object id to the first insight reported for it.
type Insights map[string]Insight
