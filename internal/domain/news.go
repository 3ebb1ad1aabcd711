package domain

import "time"

// RawNewsItem is the intermediate, not-yet-enriched article produced by the
// discovery stage. It never leaves the news pipeline.
type RawNewsItem struct {
	Title          string
	Source         string
	SourceURL      string
	URL            string
	PublishedAt    time.Time
	Published      string
	Image          string
	RawDescription string
	Content        string
}

// NewsItem is the externally visible, enriched article. Identity is
// positional: the slot index within the current NewsSet, not a content key.
type NewsItem struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
	Processing  bool   `json:"processing,omitempty"`
}

// NewsSet holds the ordered items of one discovery cycle. The items length
// is fixed once filtering completes; only elements are replaced in place.
type NewsSet struct {
	Items      []NewsItem `json:"items"`
	LastUpdate string     `json:"lastUpdate"`
}

// Clone returns a deep copy safe to hand to subscribers.
func (s *NewsSet) Clone() *NewsSet {
	if s == nil {
		return nil
	}
	out := &NewsSet{
		Items:      make([]NewsItem, len(s.Items)),
		LastUpdate: s.LastUpdate,
	}
	copy(out.Items, s.Items)
	return out
}

// NewsItemUpdate is the incremental delivery payload for one enriched slot.
type NewsItemUpdate struct {
	Index int      `json:"index"`
	Item  NewsItem `json:"item"`
}
