package trello

// BoardSummary is one record from the member board listing.
type BoardSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
	URL    string `json:"url"`
}

// ListSummary is one record from a board's list listing.
type ListSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
}

// CardSummary is one record from a board's open-card listing.
type CardSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
}
