package clean

// Auto reduces a payload of unknown origin by sniffing which raw fields
// are present: boards carry "lists" or "prefs", cards carry "idList" or
// "badges", lists carry "cards". This is a heuristic, best-effort
// fallback only — callers that know what they fetched should use the
// typed entry points, and all tool handlers do.
//
// The second return is the detected kind ("board", "card", "list"), or
// "" when the shape matched nothing, in which case the input is returned
// unchanged.
func Auto(raw map[string]any) (any, string) {
	_, hasLists := raw["lists"]
	_, hasPrefs := raw["prefs"]
	_, hasIDList := raw["idList"]
	_, hasBadges := raw["badges"]
	_, hasCards := raw["cards"]

	switch {
	case hasLists || hasPrefs:
		return CleanBoard(raw), "board"
	case hasIDList || hasBadges:
		return CleanCard(raw, nil, nil), "card"
	case hasCards:
		return CleanList(raw, nil, nil), "list"
	}
	return raw, ""
}
