package resolve

// ScopeGuard validates requested board names against an optional
// allow-list. An empty allow-list admits every board. Built once from
// configuration at startup and injected; there is no hot-reload.
type ScopeGuard struct {
	allowed      map[string]bool
	allowedNames []string
	defaultBoard string
}

// NewScopeGuard builds a guard from the configured allow-list and
// default board name. Names are matched case- and whitespace-insensitively.
func NewScopeGuard(allowed []string, defaultBoard string) *ScopeGuard {
	g := &ScopeGuard{defaultBoard: defaultBoard}
	if len(allowed) > 0 {
		g.allowed = make(map[string]bool, len(allowed))
		for _, name := range allowed {
			n := normalizeName(name)
			if n == "" {
				continue
			}
			if !g.allowed[n] {
				g.allowed[n] = true
				g.allowedNames = append(g.allowedNames, name)
			}
		}
	}
	return g
}

// Check returns a KindAccessDenied error when an allow-list is configured
// and name is not on it. Runs before any network access.
func (g *ScopeGuard) Check(name string) error {
	if len(g.allowed) == 0 {
		return nil
	}
	if g.allowed[normalizeName(name)] {
		return nil
	}
	return &Error{
		Kind:       KindAccessDenied,
		Resource:   "board",
		Name:       name,
		Candidates: g.allowedNames,
	}
}

// DefaultBoard returns the configured fallback board name, or "" if none.
func (g *ScopeGuard) DefaultBoard() string { return g.defaultBoard }
