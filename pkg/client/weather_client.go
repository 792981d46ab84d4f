package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bobby-s-dev/weather-dashboard/internal/models"
	"go.uber.org/zap"
)

var errEmptyVideoURL = errors.New("empty video url")

// WeatherClient talks to the weather backend resource, one request per call.
type WeatherClient struct {
	*BaseClient
}

type currentWeatherPayload struct {
	Location           *string  `json:"location" validate:"required"`
	Temperature        *float64 `json:"temperature" validate:"required"`
	Humidity           *float64 `json:"humidity" validate:"required"`
	WindSpeed          *float64 `json:"windSpeed" validate:"required"`
	WeatherDescription *string  `json:"weatherDescription" validate:"required"`
	WeatherIcon        *string  `json:"weatherIcon" validate:"required"`
}

type forecastEntryPayload struct {
	RequestDate        *string  `json:"requestDate" validate:"required"`
	Temperature        *float64 `json:"temperature" validate:"required"`
	WeatherDescription *string  `json:"weatherDescription" validate:"required"`
	WeatherIcon        *string  `json:"weatherIcon" validate:"required"`
}

type historyRecordPayload struct {
	ID          json.RawMessage `json:"id" validate:"required"`
	Location    *string         `json:"location" validate:"required"`
	Temperature *float64        `json:"temperature"`
	StartDate   *string         `json:"startDate"`
	EndDate     *string         `json:"endDate"`
}

func NewWeatherClient(config ClientConfig, logger *zap.Logger) *WeatherClient {
	return &WeatherClient{
		BaseClient: NewBaseClient("weather-backend", config, logger),
	}
}

func (c *WeatherClient) GetCurrent(ctx context.Context, location string) (*models.CurrentWeather, error) {
	data, err := c.call(ctx, OpGetCurrent, http.MethodGet, "/current", locationQuery(location), nil)
	if err != nil {
		return nil, err
	}

	var payload currentWeatherPayload
	if err := decode(data, &payload); err != nil {
		return nil, malformed(OpGetCurrent, err)
	}

	return &models.CurrentWeather{
		Location:           *payload.Location,
		Temperature:        *payload.Temperature,
		Humidity:           *payload.Humidity,
		WindSpeed:          *payload.WindSpeed,
		WeatherDescription: *payload.WeatherDescription,
		WeatherIcon:        *payload.WeatherIcon,
	}, nil
}

func (c *WeatherClient) GetForecast(ctx context.Context, location string) ([]models.ForecastEntry, error) {
	data, err := c.call(ctx, OpGetForecast, http.MethodGet, "/forecast", locationQuery(location), nil)
	if err != nil {
		return nil, err
	}

	var payload []forecastEntryPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, malformed(OpGetForecast, err)
	}

	forecast := make([]models.ForecastEntry, 0, len(payload))
	for i, item := range payload {
		if err := models.ValidateStruct(item); err != nil {
			return nil, malformed(OpGetForecast, fmt.Errorf("entry %d: %w", i, err))
		}
		requestDate, err := models.ParseRequestDate(*item.RequestDate)
		if err != nil {
			return nil, malformed(OpGetForecast, fmt.Errorf("entry %d: %w", i, err))
		}
		forecast = append(forecast, models.ForecastEntry{
			RequestDate:        requestDate,
			Temperature:        *item.Temperature,
			WeatherDescription: *item.WeatherDescription,
			WeatherIcon:        *item.WeatherIcon,
		})
	}

	return forecast, nil
}

func (c *WeatherClient) GetHistory(ctx context.Context) ([]models.HistoryRecord, error) {
	data, err := c.call(ctx, OpGetHistory, http.MethodGet, "", nil, nil)
	if err != nil {
		return nil, err
	}

	var payload []historyRecordPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, malformed(OpGetHistory, err)
	}

	history := make([]models.HistoryRecord, 0, len(payload))
	for i, item := range payload {
		if err := models.ValidateStruct(item); err != nil {
			return nil, malformed(OpGetHistory, fmt.Errorf("record %d: %w", i, err))
		}
		id, err := recordID(item.ID)
		if err != nil {
			return nil, malformed(OpGetHistory, fmt.Errorf("record %d: %w", i, err))
		}
		history = append(history, models.HistoryRecord{
			ID:          id,
			Location:    *item.Location,
			Temperature: valueOf(item.Temperature),
			StartDate:   valueOf(item.StartDate),
			EndDate:     valueOf(item.EndDate),
		})
	}

	return history, nil
}

func (c *WeatherClient) Create(ctx context.Context, req models.SaveRequest) error {
	_, err := c.call(ctx, OpCreate, http.MethodPost, "", nil, req)
	return err
}

func (c *WeatherClient) Update(ctx context.Context, id string, req models.SaveRequest) error {
	_, err := c.call(ctx, OpUpdate, http.MethodPut, "/"+url.PathEscape(id), nil, req)
	return err
}

func (c *WeatherClient) Delete(ctx context.Context, id string) error {
	_, err := c.call(ctx, OpDelete, http.MethodDelete, "/"+url.PathEscape(id), nil, nil)
	return err
}

// ExportCSV returns the export payload exactly as the backend produced it.
func (c *WeatherClient) ExportCSV(ctx context.Context) (string, error) {
	data, err := c.call(ctx, OpExport, http.MethodGet, "/export", nil, nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetVideo returns a video "watch" URL; embedding is the caller's concern.
func (c *WeatherClient) GetVideo(ctx context.Context, location string) (string, error) {
	data, err := c.call(ctx, OpGetVideo, http.MethodGet, "/video", locationQuery(location), nil)
	if err != nil {
		return "", err
	}

	link := string(bytes.TrimSpace(data))
	if strings.HasPrefix(link, `"`) {
		if err := json.Unmarshal([]byte(link), &link); err != nil {
			return "", malformed(OpGetVideo, err)
		}
		link = strings.TrimSpace(link)
	}
	if link == "" {
		return "", malformed(OpGetVideo, errEmptyVideoURL)
	}
	if _, err := url.ParseRequestURI(link); err != nil {
		return "", malformed(OpGetVideo, err)
	}

	return link, nil
}

func (c *WeatherClient) call(ctx context.Context, op Operation, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	resp, err := c.Do(ctx, method, path, query, payload)
	if err != nil {
		c.logger.Warn("Backend call failed",
			zap.String("operation", string(op)),
			zap.Error(err))
		return nil, newRequestError(op, 0, nil, err)
	}

	if !resp.OK() {
		reqErr := newRequestError(op, resp.StatusCode, resp.Body, nil)
		c.logger.Warn("Backend returned error status",
			zap.String("operation", string(op)),
			zap.Int("status", resp.StatusCode),
			zap.String("message", reqErr.Message))
		return nil, reqErr
	}

	return resp.Body, nil
}

func locationQuery(location string) url.Values {
	return url.Values{"location": []string{location}}
}

func decode(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	return models.ValidateStruct(v)
}

// recordID normalizes an opaque id that may arrive as a JSON string or number.
func recordID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errors.New("missing id")
	}
	if raw[0] == '"' {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", err
		}
		if id == "" {
			return "", errors.New("missing id")
		}
		return id, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("unsupported id %s: %w", raw, err)
	}
	return n.String(), nil
}

func valueOf[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
