package charts

import (
	"encoding/json"
)

// Config is a Chart.js chart configuration
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

// Data holds the labels and series of a chart
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is a single series. BackgroundColor is a string for line charts and
// a per-bar list for bar charts.
type Dataset struct {
	Label           string      `json:"label"`
	Data            []float64   `json:"data"`
	BorderColor     string      `json:"borderColor,omitempty"`
	BackgroundColor interface{} `json:"backgroundColor,omitempty"`
	Tension         float64     `json:"tension,omitempty"`
	Fill            bool        `json:"fill,omitempty"`
}

type Options struct {
	Responsive          bool    `json:"responsive"`
	MaintainAspectRatio bool    `json:"maintainAspectRatio"`
	Plugins             Plugins `json:"plugins"`
	Scales              Scales  `json:"scales"`
}

type Plugins struct {
	Legend Legend `json:"legend"`
}

type Legend struct {
	Display bool `json:"display"`
}

type Scales struct {
	Y Axis `json:"y"`
}

type Axis struct {
	BeginAtZero bool `json:"beginAtZero"`
	Min         int  `json:"min"`
	Max         int  `json:"max"`
}

// Set is the pair of charts drawn on the dashboard
type Set struct {
	Performance Config `json:"performance"`
	Trends      Config `json:"trends"`
}

const accentGreen = "#10b981"

// Defaults returns the static dashboard charts
func Defaults() Set {
	return Set{
		Performance: Config{
			Type: "line",
			Data: Data{
				Labels: []string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun"},
				Datasets: []Dataset{{
					Label:           "Taxa de Acerto (%)",
					Data:            []float64{75, 78, 82, 79, 85, 83},
					BorderColor:     accentGreen,
					BackgroundColor: "rgba(16, 185, 129, 0.1)",
					Tension:         0.4,
					Fill:            true,
				}},
			},
			Options: percentOptions(),
		},
		Trends: Config{
			Type: "bar",
			Data: Data{
				Labels: []string{"Vitória Casa", "Empate", "Vitória Fora", "Over 2.5", "BTTS"},
				Datasets: []Dataset{{
					Label:           "Taxa de Sucesso (%)",
					Data:            []float64{82, 65, 71, 78, 85},
					BackgroundColor: []string{accentGreen, "#f59e0b", "#ef4444", "#3b82f6", "#8b5cf6"},
				}},
			},
			Options: percentOptions(),
		},
	}
}

func percentOptions() Options {
	return Options{
		Responsive:          true,
		MaintainAspectRatio: false,
		Plugins:             Plugins{Legend: Legend{Display: false}},
		Scales:              Scales{Y: Axis{BeginAtZero: true, Min: 0, Max: 100}},
	}
}

// JSON encodes a chart for embedding in a page
func (c Config) JSON() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
