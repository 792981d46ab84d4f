// Package geo resolves the device position used by "weather here" actions.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// ErrLocationUnavailable is wrapped by every locator failure.
var ErrLocationUnavailable = errors.New("location unavailable")

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// String formats the pair as "<lat>,<lon>" using the shortest decimal form.
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

func (c Coordinates) valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// Static always reports the same position.
type Static Coordinates

func (s Static) Locate(ctx context.Context) (Coordinates, error) {
	c := Coordinates(s)
	if !c.valid() {
		return Coordinates{}, fmt.Errorf("%w: coordinates out of range (%s)", ErrLocationUnavailable, c)
	}
	return c, nil
}

// ParseStatic builds a Static locator from textual latitude and longitude.
func ParseStatic(lat, lon string) (Static, error) {
	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Static{}, fmt.Errorf("%w: invalid latitude %q", ErrLocationUnavailable, lat)
	}
	longitude, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return Static{}, fmt.Errorf("%w: invalid longitude %q", ErrLocationUnavailable, lon)
	}
	s := Static{Latitude: latitude, Longitude: longitude}
	if !Coordinates(s).valid() {
		return Static{}, fmt.Errorf("%w: coordinates out of range (%s)", ErrLocationUnavailable, Coordinates(s))
	}
	return s, nil
}

// Unavailable is used when no position source is configured.
type Unavailable struct{}

func (Unavailable) Locate(ctx context.Context) (Coordinates, error) {
	return Coordinates{}, fmt.Errorf("%w: no position source configured", ErrLocationUnavailable)
}

// IPLocator asks an IP geolocation service for the caller's position.
// The service is expected to answer {"status":"success","lat":..,"lon":..}.
type IPLocator struct {
	URL    string
	Client *http.Client
	logger *zap.Logger
}

func NewIPLocator(url string, logger *zap.Logger) *IPLocator {
	return &IPLocator{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (l *IPLocator) Locate(ctx context.Context) (Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		l.logger.Warn("IP geolocation request failed", zap.String("url", l.URL), zap.Error(err))
		return Coordinates{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("%w: geolocation service returned %d", ErrLocationUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}

	var payload struct {
		Status  string   `json:"status"`
		Message string   `json:"message"`
		Lat     *float64 `json:"lat"`
		Lon     *float64 `json:"lon"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	if payload.Status != "" && payload.Status != "success" {
		return Coordinates{}, fmt.Errorf("%w: %s", ErrLocationUnavailable, payload.Message)
	}
	if payload.Lat == nil || payload.Lon == nil {
		return Coordinates{}, fmt.Errorf("%w: response carries no coordinates", ErrLocationUnavailable)
	}

	c := Coordinates{Latitude: *payload.Lat, Longitude: *payload.Lon}
	l.logger.Debug("Resolved position from IP", zap.String("coordinates", c.String()))
	return c, nil
}
