package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar date format used by history date ranges.
const DateLayout = "2006-01-02"

// requestDateLayouts are the timestamp shapes the backend is known to emit
// for forecast entries, tried in order.
var requestDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

var validate = validator.New()

type CurrentWeather struct {
	Location           string  `json:"location"`
	Temperature        float64 `json:"temperature"`
	Humidity           float64 `json:"humidity"`
	WindSpeed          float64 `json:"windSpeed"`
	WeatherDescription string  `json:"weatherDescription"`
	WeatherIcon        string  `json:"weatherIcon"`
}

type ForecastEntry struct {
	RequestDate        time.Time `json:"requestDate"`
	Temperature        float64   `json:"temperature"`
	WeatherDescription string    `json:"weatherDescription"`
	WeatherIcon        string    `json:"weatherIcon"`
}

// HistoryRecord is a saved weather query as the backend last reported it.
type HistoryRecord struct {
	ID          string  `json:"id"`
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
}

// SaveRequest is the payload for creating and updating history records.
type SaveRequest struct {
	Location  string `json:"location" validate:"required"`
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// Validate checks the request shape. The backend owns the range check.
func (r SaveRequest) Validate() error {
	err := validate.Struct(r)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	switch fe := fieldErrs[0]; fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", jsonName(fe.StructField()))
	case "datetime":
		return fmt.Errorf("%s must be a date formatted YYYY-MM-DD", jsonName(fe.StructField()))
	default:
		return fmt.Errorf("%s is invalid", jsonName(fe.StructField()))
	}
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// ParseRequestDate parses a forecast timestamp in any of the accepted layouts.
func ParseRequestDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range requestDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized request date %q", value)
}

// ValidateStruct runs the shared validator against a tagged struct.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}
