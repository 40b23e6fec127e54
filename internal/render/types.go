package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/fortuna/pitchside/internal/backend"
	"github.com/fortuna/pitchside/internal/charts"
	"github.com/fortuna/pitchside/internal/notify"
	"github.com/fortuna/pitchside/internal/state"
)

// PageData is everything the full dashboard page shows
type PageData struct {
	State         state.Snapshot
	Toasts        []notify.Toast
	Charts        charts.Set
	Championships []int
}

var menuIcons = map[state.Section]string{
	state.SectionDashboard:   "tachometer-alt",
	state.SectionTeams:       "users",
	state.SectionMatches:     "futbol",
	state.SectionOdds125:     "coins",
	state.SectionAnalysis:    "chart-bar",
	state.SectionPerformance: "chart-line",
}

func icon(name string) string {
	return "fas fa-" + name
}

func championshipNames(matches []backend.Match) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range matches {
		if m.ChampionshipName != "" && !seen[m.ChampionshipName] {
			seen[m.ChampionshipName] = true
			names = append(names, m.ChampionshipName)
		}
	}
	sort.Strings(names)
	return names
}

func matchScore(m backend.Match) string {
	if !m.Finished() {
		return "-"
	}
	return itoa(m.HomeScore) + " - " + itoa(m.AwayScore)
}

func teamStats(team backend.Team) backend.TeamStats {
	if team.Stats == nil {
		return backend.TeamStats{}
	}
	return *team.Stats
}

func marketStats(a *backend.MarketAnalysis) backend.MarketStatistics {
	if a.MarketStatistics == nil {
		return backend.MarketStatistics{}
	}
	return *a.MarketStatistics
}

func opportunityCount(search *backend.OpportunitySearch) int {
	if search == nil {
		return 0
	}
	return len(search.HighConfidenceBets)
}

func joined(values []string) string {
	return strings.Join(values, ", ")
}

func unixMilli(t notify.Toast) string {
	return strconv.FormatInt(t.ExpiresAt.UnixMilli(), 10)
}
