package controller

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-dashboard/internal/geo"
	"github.com/bobby-s-dev/weather-dashboard/internal/models"
	"github.com/bobby-s-dev/weather-dashboard/internal/state"
)

const (
	msgLocationUnavailable = "Failed to get current location"
	msgLocationRequired    = "location is required"
)

// WeatherAPI is the subset of the backend client the controller drives.
type WeatherAPI interface {
	GetCurrent(ctx context.Context, location string) (*models.CurrentWeather, error)
	GetForecast(ctx context.Context, location string) ([]models.ForecastEntry, error)
	GetHistory(ctx context.Context) ([]models.HistoryRecord, error)
	Create(ctx context.Context, req models.SaveRequest) error
	Update(ctx context.Context, id string, req models.SaveRequest) error
	Delete(ctx context.Context, id string) error
	ExportCSV(ctx context.Context) (string, error)
	GetVideo(ctx context.Context, location string) (string, error)
}

// Controller sequences user actions against the backend. Each action clears
// the error, runs its calls in order, and either replaces the affected state
// wholesale or records the failure message. Failures never escape an action.
type Controller struct {
	api    WeatherAPI
	store  *state.Store
	logger *zap.Logger
}

func New(api WeatherAPI, store *state.Store, logger *zap.Logger) *Controller {
	return &Controller{
		api:    api,
		store:  store,
		logger: logger,
	}
}

func (c *Controller) State() state.State {
	return c.store.Snapshot()
}

func (c *Controller) SetLocation(location string) {
	c.store.Apply(state.LocationChanged{Location: location})
}

func (c *Controller) SetDateRange(startDate, endDate string) {
	c.store.Apply(state.DateRangeChanged{StartDate: startDate, EndDate: endDate})
}

// FetchWeather loads current weather and then the forecast for the typed location.
func (c *Controller) FetchWeather(ctx context.Context) {
	ticket := c.store.Begin(state.KindWeather)
	c.fetchWeather(ctx, ticket, c.store.Snapshot().Location)
}

// FetchWeatherForPosition resolves the device position, makes it the active
// location and loads weather for it. A position failure only sets the error.
func (c *Controller) FetchWeatherForPosition(ctx context.Context, locator geo.Locator) {
	ticket := c.store.Begin(state.KindWeather)

	coords, err := locator.Locate(ctx)
	if err != nil {
		c.logger.Warn("Failed to resolve device position", zap.Error(err))
		c.store.Commit(ticket, state.ActionFailed{Message: msgLocationUnavailable})
		return
	}

	location := coords.String()
	if !c.store.Commit(ticket, state.LocationChanged{Location: location}) {
		return
	}
	c.fetchWeather(ctx, ticket, location)
}

func (c *Controller) fetchWeather(ctx context.Context, ticket state.Ticket, location string) {
	location = strings.TrimSpace(location)
	if location == "" {
		c.store.Commit(ticket, state.ActionFailed{Message: msgLocationRequired})
		return
	}

	c.logger.Info("Fetching weather", zap.String("location", location))

	current, err := c.api.GetCurrent(ctx, location)
	if err != nil {
		c.fail(ticket, err)
		return
	}

	forecast, err := c.api.GetForecast(ctx, location)
	if err != nil {
		c.fail(ticket, err)
		return
	}

	c.store.Commit(ticket, state.WeatherLoaded{Current: *current, Forecast: forecast})
}

func (c *Controller) FetchVideo(ctx context.Context) {
	ticket := c.store.Begin(state.KindVideo)

	location := strings.TrimSpace(c.store.Snapshot().Location)
	if location == "" {
		c.store.Commit(ticket, state.ActionFailed{Message: msgLocationRequired})
		return
	}

	link, err := c.api.GetVideo(ctx, location)
	if err != nil {
		c.fail(ticket, err)
		return
	}

	c.store.Commit(ticket, state.VideoLoaded{URL: link})
}

// Save creates a history record from the location and date range, then
// refreshes history so the new record shows up.
func (c *Controller) Save(ctx context.Context) {
	ticket := c.store.Begin(state.KindSave)

	req, err := c.saveRequest()
	if err != nil {
		c.store.Commit(ticket, state.ActionFailed{Message: err.Error()})
		return
	}

	c.logger.Info("Saving weather query",
		zap.String("location", req.Location),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate))

	if err := c.api.Create(ctx, req); err != nil {
		c.fail(ticket, err)
		return
	}

	c.RefreshHistory(ctx)
}

// Update rewrites record id with the current location and date range.
func (c *Controller) Update(ctx context.Context, id string) {
	ticket := c.store.Begin(state.KindUpdate)

	req, err := c.saveRequest()
	if err != nil {
		c.store.Commit(ticket, state.ActionFailed{Message: err.Error()})
		return
	}

	c.logger.Info("Updating weather record", zap.String("id", id))

	if err := c.api.Update(ctx, id, req); err != nil {
		c.fail(ticket, err)
		return
	}

	c.RefreshHistory(ctx)
}

// Delete removes record id and refreshes history, whether or not the record
// was in the last fetched list.
func (c *Controller) Delete(ctx context.Context, id string) {
	ticket := c.store.Begin(state.KindDelete)

	c.logger.Info("Deleting weather record", zap.String("id", id))

	if err := c.api.Delete(ctx, id); err != nil {
		c.fail(ticket, err)
		return
	}

	c.RefreshHistory(ctx)
}

func (c *Controller) RefreshHistory(ctx context.Context) {
	ticket := c.store.Begin(state.KindHistory)

	history, err := c.api.GetHistory(ctx)
	if err != nil {
		c.fail(ticket, err)
		return
	}

	c.store.Commit(ticket, state.HistoryLoaded{History: history})
}

// Export returns the export payload for display. ok is false when the
// export failed or was superseded by a newer export.
func (c *Controller) Export(ctx context.Context) (payload string, ok bool) {
	ticket := c.store.Begin(state.KindExport)

	payload, err := c.api.ExportCSV(ctx)
	if err != nil {
		c.fail(ticket, err)
		return "", false
	}

	if !c.store.Current(ticket) {
		return "", false
	}
	return payload, true
}

func (c *Controller) saveRequest() (models.SaveRequest, error) {
	s := c.store.Snapshot()
	req := models.SaveRequest{
		Location:  strings.TrimSpace(s.Location),
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
	}
	if req.Location == "" {
		return req, errors.New(msgLocationRequired)
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

func (c *Controller) fail(ticket state.Ticket, err error) {
	c.logger.Warn("Action failed",
		zap.String("kind", string(ticket.Kind)),
		zap.Error(err))
	c.store.Commit(ticket, state.ActionFailed{Message: err.Error()})
}
