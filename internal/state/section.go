package state

// Section is one of the mutually exclusive dashboard views
type Section string

const (
	SectionDashboard   Section = "dashboard"
	SectionTeams       Section = "teams"
	SectionMatches     Section = "matches"
	SectionOdds125     Section = "odds125"
	SectionAnalysis    Section = "analysis"
	SectionPerformance Section = "performance"
)

// Sections lists every section in menu order
var Sections = []Section{
	SectionDashboard,
	SectionTeams,
	SectionMatches,
	SectionOdds125,
	SectionAnalysis,
	SectionPerformance,
}

type heading struct {
	title    string
	subtitle string
}

var headings = map[Section]heading{
	SectionDashboard:   {"Dashboard", "Visão geral do sistema de análise"},
	SectionTeams:       {"Equipas", "Gestão e análise de equipas"},
	SectionMatches:     {"Partidas", "Histórico e próximas partidas"},
	SectionOdds125:     {"Odds 1.25", "Oportunidades de apostas confiáveis"},
	SectionAnalysis:    {"Análise Avançada", "Análise detalhada de confrontos"},
	SectionPerformance: {"Performance", "Métricas e tendências"},
}

// ParseSection validates a section name
func ParseSection(name string) (Section, bool) {
	s := Section(name)
	_, ok := headings[s]
	return s, ok
}

// Title is the page title shown for the section
func (s Section) Title() string {
	return headings[s].title
}

// Subtitle is the line shown under the title
func (s Section) Subtitle() string {
	return headings[s].subtitle
}
