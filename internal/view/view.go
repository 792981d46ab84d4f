// Package view renders dashboard state as text.
package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bobby-s-dev/weather-dashboard/internal/models"
	"github.com/bobby-s-dev/weather-dashboard/internal/state"
)

const iconURLFormat = "http://openweathermap.org/img/wn/%s@2x.png"

// IconURL returns the image URL for a weather icon code.
func IconURL(code string) string {
	return fmt.Sprintf(iconURLFormat, code)
}

// EmbedURL turns a video "watch" link into its embeddable form.
func EmbedURL(watchURL string) string {
	return strings.Replace(watchURL, "watch?v=", "embed/", 1)
}

// Number prints a value in its shortest decimal form: 18, 3.2.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DayLabel is the calendar date of a forecast entry.
func DayLabel(entry models.ForecastEntry) string {
	return entry.RequestDate.Format(models.DateLayout)
}

// Dashboard is the state enriched with the derived URLs a page needs.
type Dashboard struct {
	state.State
	IconURL  string        `json:"iconUrl,omitempty"`
	EmbedURL string        `json:"embedUrl,omitempty"`
	Days     []ForecastDay `json:"days"`
}

type ForecastDay struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	IconURL     string  `json:"iconUrl"`
}

func NewDashboard(s state.State) Dashboard {
	d := Dashboard{State: s, Days: make([]ForecastDay, 0, len(s.Forecast))}
	if s.Current != nil {
		d.IconURL = IconURL(s.Current.WeatherIcon)
	}
	if s.VideoURL != "" {
		d.EmbedURL = EmbedURL(s.VideoURL)
	}
	for _, entry := range s.Forecast {
		d.Days = append(d.Days, ForecastDay{
			Date:        DayLabel(entry),
			Temperature: entry.Temperature,
			Description: entry.WeatherDescription,
			IconURL:     IconURL(entry.WeatherIcon),
		})
	}
	return d
}

// Render writes the whole dashboard. Empty sections are skipped.
func Render(w io.Writer, s state.State) error {
	var b strings.Builder

	if s.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n\n", s.Error)
	}
	if s.Current != nil {
		writeCurrent(&b, s.Current)
		b.WriteString("\n")
	}
	if len(s.Forecast) > 0 {
		writeForecast(&b, s.Forecast)
		b.WriteString("\n")
	}
	if s.VideoURL != "" {
		fmt.Fprintf(&b, "Weather-related YouTube Video\n  %s\n\n", EmbedURL(s.VideoURL))
	}
	if len(s.History) > 0 {
		writeHistory(&b, s.History)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderCurrent writes only the current weather block.
func RenderCurrent(w io.Writer, c models.CurrentWeather) error {
	var b strings.Builder
	writeCurrent(&b, &c)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeCurrent(b *strings.Builder, c *models.CurrentWeather) {
	fmt.Fprintf(b, "%s\n", c.Location)
	fmt.Fprintf(b, "  Icon: %s\n", IconURL(c.WeatherIcon))
	fmt.Fprintf(b, "  Temperature: %s°C\n", Number(c.Temperature))
	fmt.Fprintf(b, "  Humidity: %s%%\n", Number(c.Humidity))
	fmt.Fprintf(b, "  Wind Speed: %s m/s\n", Number(c.WindSpeed))
	fmt.Fprintf(b, "  %s\n", c.WeatherDescription)
}

func writeForecast(b *strings.Builder, forecast []models.ForecastEntry) {
	b.WriteString("5-Day Forecast\n")
	for _, day := range forecast {
		fmt.Fprintf(b, "  %s  %s°C  %s  (%s)\n",
			DayLabel(day), Number(day.Temperature), day.WeatherDescription, IconURL(day.WeatherIcon))
	}
}

func writeHistory(b *strings.Builder, history []models.HistoryRecord) {
	b.WriteString("Weather History\n")
	for _, item := range history {
		fmt.Fprintf(b, "  [%s] %s\n", item.ID, HistoryLine(item))
	}
}

// HistoryLine formats a record as "<location> - <temp>°C (<start> to <end>)".
func HistoryLine(r models.HistoryRecord) string {
	return fmt.Sprintf("%s - %s°C (%s to %s)", r.Location, Number(r.Temperature), r.StartDate, r.EndDate)
}
