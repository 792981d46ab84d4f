// Package state holds the dashboard view state and the transitions applied to it.
//
// Every change goes through Reduce, a pure function from (State, Event) to a
// new State. The Store serializes those transitions and discards completions
// of actions that have been superseded by a newer action of the same kind.
package state

import (
	"github.com/bobby-s-dev/weather-dashboard/internal/models"
)

// State is everything the dashboard shows. Values returned from the Store
// are copies and safe to keep.
type State struct {
	Location  string                 `json:"location"`
	StartDate string                 `json:"startDate"`
	EndDate   string                 `json:"endDate"`
	Current   *models.CurrentWeather `json:"currentWeather"`
	Forecast  []models.ForecastEntry `json:"forecast"`
	History   []models.HistoryRecord `json:"history"`
	VideoURL  string                 `json:"videoUrl"`
	Error     string                 `json:"error"`
}

// Event is a state transition input.
type Event interface {
	apply(State) State
}

type LocationChanged struct{ Location string }

type DateRangeChanged struct{ StartDate, EndDate string }

// ErrorCleared marks the start of an action attempt.
type ErrorCleared struct{}

// WeatherLoaded replaces current weather, then the forecast.
type WeatherLoaded struct {
	Current  models.CurrentWeather
	Forecast []models.ForecastEntry
}

type VideoLoaded struct{ URL string }

type HistoryLoaded struct{ History []models.HistoryRecord }

type ActionFailed struct{ Message string }

// Reduce applies one event and returns the resulting state. s is not modified.
func Reduce(s State, e Event) State {
	return e.apply(s.clone())
}

func (e LocationChanged) apply(s State) State {
	s.Location = e.Location
	return s
}

func (e DateRangeChanged) apply(s State) State {
	s.StartDate = e.StartDate
	s.EndDate = e.EndDate
	return s
}

func (ErrorCleared) apply(s State) State {
	s.Error = ""
	return s
}

func (e WeatherLoaded) apply(s State) State {
	current := e.Current
	s.Current = &current
	s.Forecast = append([]models.ForecastEntry(nil), e.Forecast...)
	return s
}

func (e VideoLoaded) apply(s State) State {
	s.VideoURL = e.URL
	return s
}

func (e HistoryLoaded) apply(s State) State {
	s.History = append([]models.HistoryRecord(nil), e.History...)
	return s
}

func (e ActionFailed) apply(s State) State {
	s.Error = e.Message
	return s
}

func (s State) clone() State {
	out := s
	if s.Current != nil {
		current := *s.Current
		out.Current = &current
	}
	if s.Forecast != nil {
		out.Forecast = append([]models.ForecastEntry(nil), s.Forecast...)
	}
	if s.History != nil {
		out.History = append([]models.HistoryRecord(nil), s.History...)
	}
	return out
}
