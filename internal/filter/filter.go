package filter

import (
	"strings"

	"github.com/fortuna/pitchside/internal/backend"
)

// Teams returns the teams whose popular name, name or abbreviation contains
// query, ignoring case. An empty query returns every team.
func Teams(teams []backend.Team, query string) []backend.Team {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]backend.Team, 0, len(teams))
	for _, t := range teams {
		if q == "" ||
			strings.Contains(strings.ToLower(t.PopularName), q) ||
			strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Abbreviation), q) {
			out = append(out, t)
		}
	}
	return out
}

// Matches keeps matches whose championship name contains championship and
// whose status equals status. Empty values do not filter.
func Matches(matches []backend.Match, championship, status string) []backend.Match {
	out := make([]backend.Match, 0, len(matches))
	for _, m := range matches {
		if championship != "" && !strings.Contains(m.ChampionshipName, championship) {
			continue
		}
		if status != "" && m.Status != status {
			continue
		}
		out = append(out, m)
	}
	return out
}
