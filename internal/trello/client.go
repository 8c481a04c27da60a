// Package trello is a thin client for the subset of the Trello REST API
// this server needs: listing fetches for the resolver, a search endpoint
// for scalable card lookup, one aggregated board fetch, and the card
// mutations behind the tools. Responses that feed the normalizer are
// returned as raw maps; listing responses decode into small summary
// structs.
package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trellis-dev/trellis-mcp/internal/resolve"
)

const defaultBaseURL = "https://api.trello.com/1"

// maxBodyBytes caps response reads; an aggregated board fetch for a
// large board stays well under this.
const maxBodyBytes = 8 << 20

// Client talks to the Trello REST API. Zero retry policy: any failure
// propagates immediately, the caller owns retries.
type Client struct {
	baseURL string
	key     string
	token   string
	http    *http.Client
}

// NewClient creates a client authenticating with the given API key and
// member token.
func NewClient(key, token string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		key:     key,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientURL creates a client against a non-default base URL (tests).
func NewClientURL(baseURL, key, token string) *Client {
	c := NewClient(key, token)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// StatusError is a non-2xx upstream response, surfaced with the status
// text so the caller (and the agent behind it) sees what Trello said.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("trello: %s: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("trello: %s", e.Status)
}

// do issues one API request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, out any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("key", c.key)
	q.Set("token", c.token)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return nil
}

// MemberBoards lists the boards visible to the authenticated member.
func (c *Client) MemberBoards(ctx context.Context) ([]BoardSummary, error) {
	q := url.Values{"fields": {"name,closed,url"}}
	var boards []BoardSummary
	if err := c.do(ctx, http.MethodGet, "/members/me/boards", q, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// BoardLists lists the open lists on a board.
func (c *Client) BoardLists(ctx context.Context, boardID string) ([]ListSummary, error) {
	q := url.Values{"fields": {"name,closed"}}
	var lists []ListSummary
	if err := c.do(ctx, http.MethodGet, "/boards/"+boardID+"/lists", q, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// OpenCards lists the open cards on a board. Name-only fields: this is
// the resolver's fallback path, not a content fetch.
func (c *Client) OpenCards(ctx context.Context, boardID string) ([]CardSummary, error) {
	q := url.Values{"fields": {"name,closed"}}
	var cards []CardSummary
	if err := c.do(ctx, http.MethodGet, "/boards/"+boardID+"/cards/open", q, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// Search runs a free-text card search, optionally scoped to one board.
// The query string supports Trello's operators (name:"X", is:archived).
func (c *Client) Search(ctx context.Context, query, boardID string) ([]map[string]any, error) {
	q := url.Values{
		"query":        {query},
		"modelTypes":   {"cards"},
		"cards_limit":  {"50"},
		"card_fields":  {"name,desc,due,closed,url,idList,idMembers,idLabels,labels"},
		"card_members": {"true"},
	}
	if boardID != "" {
		q.Set("idBoards", boardID)
	}
	var result struct {
		Cards []map[string]any `json:"cards"`
	}
	if err := c.do(ctx, http.MethodGet, "/search", q, &result); err != nil {
		return nil, err
	}
	return result.Cards, nil
}

// Board fetches one board with everything expanded in a single call:
// open lists, open cards, members, labels, and checklists. The flat
// cards array comes back with idList pointers for the normalizer to
// reattach.
func (c *Client) Board(ctx context.Context, boardID string) (map[string]any, error) {
	q := url.Values{
		"fields":      {"name,desc,closed,url"},
		"lists":       {"open"},
		"cards":       {"open"},
		"card_fields": {"name,desc,due,closed,url,idList,idMembers,idLabels"},
		"members":     {"all"},
		"labels":      {"all"},
		"checklists":  {"all"},
	}
	var board map[string]any
	if err := c.do(ctx, http.MethodGet, "/boards/"+boardID, q, &board); err != nil {
		return nil, err
	}
	return board, nil
}

// Card fetches one card with members and checklists expanded.
func (c *Client) Card(ctx context.Context, cardID string) (map[string]any, error) {
	q := url.Values{
		"fields":     {"name,desc,due,closed,url,idList,idMembers,labels"},
		"checklists": {"all"},
		"members":    {"true"},
	}
	var card map[string]any
	if err := c.do(ctx, http.MethodGet, "/cards/"+cardID, q, &card); err != nil {
		return nil, err
	}
	return card, nil
}

// ListCards lists the open cards in a single list, with content fields.
func (c *Client) ListCards(ctx context.Context, listID string) ([]map[string]any, error) {
	q := url.Values{
		"fields":     {"name,desc,due,closed,url,idList,idMembers,labels"},
		"checklists": {"all"},
	}
	var cards []map[string]any
	if err := c.do(ctx, http.MethodGet, "/lists/"+listID+"/cards", q, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// ArchivedCards lists the archived (closed) cards on a board.
func (c *Client) ArchivedCards(ctx context.Context, boardID string) ([]map[string]any, error) {
	q := url.Values{
		"fields": {"name,desc,due,closed,url,idList,labels"},
	}
	var cards []map[string]any
	if err := c.do(ctx, http.MethodGet, "/boards/"+boardID+"/cards/closed", q, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// CreateCard creates a card at the bottom of a list.
func (c *Client) CreateCard(ctx context.Context, listID, name, desc, due string) (map[string]any, error) {
	q := url.Values{
		"idList": {listID},
		"name":   {name},
		"pos":    {"bottom"},
	}
	if desc != "" {
		q.Set("desc", desc)
	}
	if due != "" {
		q.Set("due", due)
	}
	var card map[string]any
	if err := c.do(ctx, http.MethodPost, "/cards", q, &card); err != nil {
		return nil, err
	}
	return card, nil
}

// CardUpdate holds the optional fields of an update; nil means unchanged.
type CardUpdate struct {
	Name   *string
	Desc   *string
	Due    *string
	ListID *string
	Closed *bool
}

// UpdateCard applies a partial update to a card.
func (c *Client) UpdateCard(ctx context.Context, cardID string, upd CardUpdate) (map[string]any, error) {
	q := url.Values{}
	if upd.Name != nil {
		q.Set("name", *upd.Name)
	}
	if upd.Desc != nil {
		q.Set("desc", *upd.Desc)
	}
	if upd.Due != nil {
		q.Set("due", *upd.Due)
	}
	if upd.ListID != nil {
		q.Set("idList", *upd.ListID)
	}
	if upd.Closed != nil {
		q.Set("closed", fmt.Sprintf("%t", *upd.Closed))
	}
	var card map[string]any
	if err := c.do(ctx, http.MethodPut, "/cards/"+cardID, q, &card); err != nil {
		return nil, err
	}
	return card, nil
}

// MoveCard moves a card to another list.
func (c *Client) MoveCard(ctx context.Context, cardID, listID string) (map[string]any, error) {
	return c.UpdateCard(ctx, cardID, CardUpdate{ListID: &listID})
}

// ArchiveCard closes a card.
func (c *Client) ArchiveCard(ctx context.Context, cardID string) (map[string]any, error) {
	closed := true
	return c.UpdateCard(ctx, cardID, CardUpdate{Closed: &closed})
}

// AddComment posts a comment on a card and returns the created action.
func (c *Client) AddComment(ctx context.Context, cardID, text string) (map[string]any, error) {
	q := url.Values{"text": {text}}
	var action map[string]any
	if err := c.do(ctx, http.MethodPost, "/cards/"+cardID+"/actions/comments", q, &action); err != nil {
		return nil, err
	}
	return action, nil
}

// The resolver's upstream collaborator interface.

// BoardNames implements resolve.Lister.
func (c *Client) BoardNames(ctx context.Context) ([]resolve.Candidate, error) {
	boards, err := c.MemberBoards(ctx)
	if err != nil {
		return nil, err
	}
	cands := make([]resolve.Candidate, 0, len(boards))
	for _, b := range boards {
		cands = append(cands, resolve.Candidate{ID: b.ID, Name: b.Name})
	}
	return cands, nil
}

// ListNames implements resolve.Lister.
func (c *Client) ListNames(ctx context.Context, boardID string) ([]resolve.Candidate, error) {
	lists, err := c.BoardLists(ctx, boardID)
	if err != nil {
		return nil, err
	}
	cands := make([]resolve.Candidate, 0, len(lists))
	for _, l := range lists {
		cands = append(cands, resolve.Candidate{ID: l.ID, Name: l.Name})
	}
	return cands, nil
}

// CardNames implements resolve.Lister.
func (c *Client) CardNames(ctx context.Context, boardID string) ([]resolve.Candidate, error) {
	cards, err := c.OpenCards(ctx, boardID)
	if err != nil {
		return nil, err
	}
	cands := make([]resolve.Candidate, 0, len(cards))
	for _, cd := range cards {
		cands = append(cands, resolve.Candidate{ID: cd.ID, Name: cd.Name})
	}
	return cands, nil
}

// CardSearch implements resolve.Lister. Results stay in the upstream's
// relevance order.
func (c *Client) CardSearch(ctx context.Context, name, boardID string) ([]resolve.Candidate, error) {
	cards, err := c.Search(ctx, fmt.Sprintf("name:%q", name), boardID)
	if err != nil {
		return nil, err
	}
	cands := make([]resolve.Candidate, 0, len(cards))
	for _, cd := range cards {
		id, _ := cd["id"].(string)
		cname, _ := cd["name"].(string)
		cands = append(cands, resolve.Candidate{ID: id, Name: cname})
	}
	return cands, nil
}
