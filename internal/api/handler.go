package api

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-dashboard/internal/geo"
	"github.com/bobby-s-dev/weather-dashboard/internal/state"
	"github.com/bobby-s-dev/weather-dashboard/internal/view"
)

var validate = validator.New()

// Dashboard is the controller surface the handlers drive.
type Dashboard interface {
	State() state.State
	SetLocation(location string)
	SetDateRange(startDate, endDate string)
	FetchWeather(ctx context.Context)
	FetchWeatherForPosition(ctx context.Context, locator geo.Locator)
	FetchVideo(ctx context.Context)
	Save(ctx context.Context)
	Update(ctx context.Context, id string)
	Delete(ctx context.Context, id string)
	RefreshHistory(ctx context.Context)
	Export(ctx context.Context) (string, bool)
}

// StatusReporter exposes background job status on the health endpoint.
type StatusReporter interface {
	GetStatus() map[string]interface{}
}

type Handler struct {
	dashboard Dashboard
	locator   geo.Locator
	scheduler StatusReporter
	logger    *zap.Logger
}

func NewHandler(dashboard Dashboard, locator geo.Locator, scheduler StatusReporter, logger *zap.Logger) *Handler {
	if locator == nil {
		locator = geo.Unavailable{}
	}
	return &Handler{
		dashboard: dashboard,
		locator:   locator,
		scheduler: scheduler,
		logger:    logger,
	}
}

type locationBody struct {
	Location string `json:"location" validate:"max=200"`
}

type dateRangeBody struct {
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// GetState handles GET /api/v1/dashboard
func (h *Handler) GetState(c *fiber.Ctx) error {
	return h.respond(c)
}

// GetView handles GET /api/v1/dashboard/view
func (h *Handler) GetView(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return view.Render(c, h.dashboard.State())
}

// SetLocation handles PUT /api/v1/dashboard/location
func (h *Handler) SetLocation(c *fiber.Ctx) error {
	var body locationBody
	if err := h.bind(c, &body); err != nil {
		return err
	}

	h.dashboard.SetLocation(body.Location)
	return h.respond(c)
}

// SetDateRange handles PUT /api/v1/dashboard/dates
func (h *Handler) SetDateRange(c *fiber.Ctx) error {
	var body dateRangeBody
	if err := h.bind(c, &body); err != nil {
		return err
	}

	h.dashboard.SetDateRange(body.StartDate, body.EndDate)
	return h.respond(c)
}

// FetchWeather handles POST /api/v1/dashboard/weather
func (h *Handler) FetchWeather(c *fiber.Ctx) error {
	h.dashboard.FetchWeather(c.UserContext())
	return h.respond(c)
}

// FetchWeatherForPosition handles POST /api/v1/dashboard/weather/position.
// Coordinates in the query take precedence over the configured locator.
func (h *Handler) FetchWeatherForPosition(c *fiber.Ctx) error {
	locator := h.locator
	lat, lon := c.Query("lat"), c.Query("lon")
	if lat != "" || lon != "" {
		static, err := geo.ParseStatic(lat, lon)
		if err != nil {
			h.logger.Debug("Rejected client coordinates", zap.Error(err))
			locator = geo.Unavailable{}
		} else {
			locator = static
		}
	}

	h.dashboard.FetchWeatherForPosition(c.UserContext(), locator)
	return h.respond(c)
}

// FetchVideo handles POST /api/v1/dashboard/video
func (h *Handler) FetchVideo(c *fiber.Ctx) error {
	h.dashboard.FetchVideo(c.UserContext())
	return h.respond(c)
}

// RefreshHistory handles GET /api/v1/dashboard/history
func (h *Handler) RefreshHistory(c *fiber.Ctx) error {
	h.dashboard.RefreshHistory(c.UserContext())
	return h.respond(c)
}

// Save handles POST /api/v1/dashboard/history
func (h *Handler) Save(c *fiber.Ctx) error {
	h.dashboard.Save(c.UserContext())
	return h.respond(c)
}

// Update handles PUT /api/v1/dashboard/history/:id
func (h *Handler) Update(c *fiber.Ctx) error {
	h.dashboard.Update(c.UserContext(), c.Params("id"))
	return h.respond(c)
}

// Delete handles DELETE /api/v1/dashboard/history/:id
func (h *Handler) Delete(c *fiber.Ctx) error {
	h.dashboard.Delete(c.UserContext(), c.Params("id"))
	return h.respond(c)
}

// Export handles GET /api/v1/dashboard/export
func (h *Handler) Export(c *fiber.Ctx) error {
	payload, ok := h.dashboard.Export(c.UserContext())
	if !ok {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": h.dashboard.State().Error,
		})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.SendString(payload)
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	body := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
	}
	if h.scheduler != nil {
		body["scheduler"] = h.scheduler.GetStatus()
	}
	return c.JSON(body)
}

func (h *Handler) respond(c *fiber.Ctx) error {
	return c.JSON(view.NewDashboard(h.dashboard.State()))
}

func (h *Handler) bind(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

var startTime = time.Now()
