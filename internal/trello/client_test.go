package trello

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestAuthParamsOnEveryRequest(t *testing.T) {
	var gotKey, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotToken = r.URL.Query().Get("token")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClientURL(srv.URL, "k123", "t456")
	if _, err := c.MemberBoards(context.Background()); err != nil {
		t.Fatalf("MemberBoards: %v", err)
	}
	if gotKey != "k123" || gotToken != "t456" {
		t.Errorf("auth params = %q/%q, want k123/t456", gotKey, gotToken)
	}
}

func TestStatusErrorCarriesStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClientURL(srv.URL, "k", "t")
	_, err := c.MemberBoards(context.Background())

	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("error is %T (%v), want *StatusError", err, err)
	}
	if serr.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", serr.Code)
	}
	if serr.Body != "invalid token" {
		t.Errorf("body = %q, want upstream message", serr.Body)
	}
}

func TestMemberBoardsDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/members/me/boards" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[{"id": "b1", "name": "Marketing", "closed": false, "url": "https://trello.com/b/x"}]`))
	}))
	defer srv.Close()

	c := NewClientURL(srv.URL, "k", "t")
	boards, err := c.MemberBoards(context.Background())
	if err != nil {
		t.Fatalf("MemberBoards: %v", err)
	}
	if len(boards) != 1 || boards[0].ID != "b1" || boards[0].Name != "Marketing" {
		t.Errorf("boards = %+v", boards)
	}
}

func TestSearchParsesCardsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("modelTypes"); got != "cards" {
			t.Errorf("modelTypes = %q", got)
		}
		w.Write([]byte(`{"cards": [{"id": "c1", "name": "Fix login bug"}]}`))
	}))
	defer srv.Close()

	c := NewClientURL(srv.URL, "k", "t")
	cards, err := c.Search(context.Background(), `name:"Fix login bug"`, "b1")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(cards) != 1 || cards[0]["id"] != "c1" {
		t.Errorf("cards = %v", cards)
	}
}

func TestCardSearchScopesQuery(t *testing.T) {
	var gotQuery, gotBoards string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotBoards = r.URL.Query().Get("idBoards")
		w.Write([]byte(`{"cards": []}`))
	}))
	defer srv.Close()

	c := NewClientURL(srv.URL, "k", "t")
	if _, err := c.CardSearch(context.Background(), "Fix login bug", "b1"); err != nil {
		t.Fatalf("CardSearch: %v", err)
	}
	if gotQuery != `name:"Fix login bug"` {
		t.Errorf("query = %q", gotQuery)
	}
	if gotBoards != "b1" {
		t.Errorf("idBoards = %q, want b1", gotBoards)
	}
}

func TestUpdateCardSendsOnlySetFields(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q, want PUT", r.Method)
		}
		got = r.URL.Query()
		w.Write([]byte(`{"id": "c1"}`))
	}))
	defer srv.Close()

	name := "Renamed"
	c := NewClientURL(srv.URL, "k", "t")
	if _, err := c.UpdateCard(context.Background(), "c1", CardUpdate{Name: &name}); err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}
	if got.Get("name") != "Renamed" {
		t.Errorf("name param = %q", got.Get("name"))
	}
	for _, absent := range []string{"desc", "due", "idList", "closed"} {
		if _, ok := got[absent]; ok {
			t.Errorf("unset field %q was sent", absent)
		}
	}
}

func TestArchiveCardSetsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("closed"); got != "true" {
			t.Errorf("closed = %q, want true", got)
		}
		w.Write([]byte(`{"id": "c1", "closed": true}`))
	}))
	defer srv.Close()

	c := NewClientURL(srv.URL, "k", "t")
	card, err := c.ArchiveCard(context.Background(), "c1")
	if err != nil {
		t.Fatalf("ArchiveCard: %v", err)
	}
	if card["closed"] != true {
		t.Errorf("card = %v", card)
	}
}
