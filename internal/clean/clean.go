// Package clean reduces raw Trello API payloads to the fields an agent
// can reason about. Identifier references are resolved to human names
// where a board-level lookup map is available, presentation-only fields
// (color, position, badges, prefs) are dropped, and flat sibling arrays
// are restructured into the board→list→card hierarchy the API otherwise
// returns flattened.
//
// Cleaning never fails: malformed or partial input degrades to zero
// values. The job here is best-effort context reduction, not validation.
package clean

import "fmt"

// Board is the reduced view of a raw board payload.
type Board struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Closed      bool   `json:"closed"`
	Lists       []List `json:"lists,omitempty"`
}

// List is the reduced view of a raw list payload.
type List struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
	Cards  []Card `json:"cards,omitempty"`
}

// Card is the reduced view of a raw card payload. Members and labels are
// names, not ids, whenever the board-level lookup maps could resolve them.
type Card struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Due             string   `json:"due,omitempty"`
	Closed          bool     `json:"closed"`
	URL             string   `json:"url,omitempty"`
	Members         []string `json:"members,omitempty"`
	Labels          []string `json:"labels,omitempty"`
	ChecklistStatus string   `json:"checklistStatus"`
}

// CleanBoard reduces a raw board payload, cleaning embedded lists and
// cards top-down so the member and label maps built here reach every
// descendant card. If the payload carries a flat card array alongside a
// flat list array (the usual shape of an expand-everything fetch), cards
// are first partitioned by their parent-list id and attached under their
// lists. The input is never mutated.
func CleanBoard(raw map[string]any) Board {
	members := memberMap(raw)
	labels := labelMap(raw)

	b := Board{
		ID:          str(raw, "id"),
		Name:        str(raw, "name"),
		Description: str(raw, "desc"),
		URL:         str(raw, "url"),
		Closed:      boolean(raw, "closed"),
	}

	byList := partitionCards(raw)
	for _, rl := range objects(raw, "lists") {
		l := CleanList(rl, members, labels)
		if len(l.Cards) == 0 {
			for _, rc := range byList[str(rl, "id")] {
				l.Cards = append(l.Cards, CleanCard(rc, members, labels))
			}
		}
		b.Lists = append(b.Lists, l)
	}
	return b
}

// CleanList reduces a raw list payload, cleaning embedded cards with the
// given board-level lookup maps.
func CleanList(raw map[string]any, members, labels map[string]string) List {
	l := List{
		ID:     str(raw, "id"),
		Name:   str(raw, "name"),
		Closed: boolean(raw, "closed"),
	}
	for _, rc := range objects(raw, "cards") {
		l.Cards = append(l.Cards, CleanCard(rc, members, labels))
	}
	return l
}

// CleanCard reduces a raw card payload. Member ids resolve through the
// board-level map first, then through member objects embedded in the
// card itself (a standalone card fetch carries those); ids with no name
// anywhere are dropped silently — a name is never fabricated. A label
// that arrives as an embedded object contributes its own name field
// directly; bare label ids go through the lookup map.
func CleanCard(raw map[string]any, members, labels map[string]string) Card {
	c := Card{
		ID:          str(raw, "id"),
		Name:        str(raw, "name"),
		Description: str(raw, "desc"),
		Due:         str(raw, "due"),
		Closed:      boolean(raw, "closed"),
		URL:         str(raw, "url"),
	}

	embedded := memberMap(raw)
	for _, id := range strs(raw, "idMembers") {
		if name, ok := members[id]; ok {
			c.Members = append(c.Members, name)
		} else if name, ok := embedded[id]; ok {
			c.Members = append(c.Members, name)
		}
	}

	if embedded := objects(raw, "labels"); len(embedded) > 0 {
		for _, lbl := range embedded {
			if name := str(lbl, "name"); name != "" {
				c.Labels = append(c.Labels, name)
			}
		}
	} else {
		for _, id := range strs(raw, "idLabels") {
			if name, ok := labels[id]; ok {
				c.Labels = append(c.Labels, name)
			}
		}
	}

	c.ChecklistStatus = checklistStatus(raw)
	return c
}

// checklistStatus aggregates check items across all embedded checklists
// into a "completed/total" string. Absent or empty checklists yield "0/0".
func checklistStatus(raw map[string]any) string {
	completed, total := 0, 0
	for _, cl := range objects(raw, "checklists") {
		for _, item := range objects(cl, "checkItems") {
			total++
			if str(item, "state") == "complete" {
				completed++
			}
		}
	}
	return fmt.Sprintf("%d/%d", completed, total)
}

// partitionCards groups a board's flat card array by parent-list id.
// Every card lands under exactly one list; cards with no idList (or no
// matching list) are dropped rather than misattached.
func partitionCards(raw map[string]any) map[string][]map[string]any {
	flat := objects(raw, "cards")
	if len(flat) == 0 {
		return nil
	}
	byList := make(map[string][]map[string]any)
	for _, rc := range flat {
		listID := str(rc, "idList")
		if listID == "" {
			continue
		}
		byList[listID] = append(byList[listID], rc)
	}
	return byList
}

// memberMap builds the member id→full-name lookup from a board's
// embedded members array. An absent array yields an empty map.
func memberMap(raw map[string]any) map[string]string {
	m := make(map[string]string)
	for _, mem := range objects(raw, "members") {
		id := str(mem, "id")
		if id == "" {
			continue
		}
		name := str(mem, "fullName")
		if name == "" {
			name = str(mem, "username")
		}
		if name != "" {
			m[id] = name
		}
	}
	return m
}

// labelMap builds the label id→name lookup from a board's embedded
// labels array.
func labelMap(raw map[string]any) map[string]string {
	m := make(map[string]string)
	for _, lbl := range objects(raw, "labels") {
		id := str(lbl, "id")
		name := str(lbl, "name")
		if id != "" && name != "" {
			m[id] = name
		}
	}
	return m
}

// str returns the string at key, or "".
func str(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// boolean returns the bool at key, or false.
func boolean(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

// strs returns the []string at key, skipping non-string elements.
func strs(m map[string]any, key string) []string {
	arr, ok := m[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// objects returns the array of JSON objects at key, skipping non-objects.
func objects(m map[string]any, key string) []map[string]any {
	arr, ok := m[key].([]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, v := range arr {
		if obj, ok := v.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
