package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-dashboard/internal/models"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// newTestClient serves handler under /api/weather and records every request.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*WeatherClient, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewWeatherClient(ClientConfig{BaseURL: srv.URL + "/api/weather/"}, zap.NewNop())
	return c, &requests
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestGetCurrent(t *testing.T) {
	c, reqs := newTestClient(t, respond(http.StatusOK,
		`{"location":"Paris","temperature":18,"humidity":60,"windSpeed":3.2,"weatherDescription":"Clear","weatherIcon":"01d"}`))

	got, err := c.GetCurrent(context.Background(), "Paris")
	require.NoError(t, err)

	assert.Equal(t, &models.CurrentWeather{
		Location:           "Paris",
		Temperature:        18,
		Humidity:           60,
		WindSpeed:          3.2,
		WeatherDescription: "Clear",
		WeatherIcon:        "01d",
	}, got)

	require.Len(t, *reqs, 1)
	assert.Equal(t, http.MethodGet, (*reqs)[0].Method)
	assert.Equal(t, "/api/weather/current", (*reqs)[0].Path)
	assert.Equal(t, "location=Paris", (*reqs)[0].Query)
}

func TestGetCurrentEncodesLocation(t *testing.T) {
	c, reqs := newTestClient(t, respond(http.StatusOK,
		`{"location":"x","temperature":0,"humidity":0,"windSpeed":0,"weatherDescription":"","weatherIcon":""}`))

	_, err := c.GetCurrent(context.Background(), "48.85,2.35 & more")
	require.NoError(t, err)
	assert.Equal(t, "location=48.85%2C2.35+%26+more", (*reqs)[0].Query)
}

func TestGetCurrentMissingField(t *testing.T) {
	c, _ := newTestClient(t, respond(http.StatusOK, `{"location":"Paris","temperature":18}`))

	_, err := c.GetCurrent(context.Background(), "Paris")

	var malformedErr *MalformedResponseError
	require.ErrorAs(t, err, &malformedErr)
	assert.Equal(t, OpGetCurrent, malformedErr.Op)
	assert.Equal(t, "Failed to fetch weather: malformed response", err.Error())
}

func TestGetForecast(t *testing.T) {
	c, reqs := newTestClient(t, respond(http.StatusOK, `[
		{"requestDate":"2024-01-01T12:00:00","temperature":5.5,"weatherDescription":"Rain","weatherIcon":"10d"},
		{"requestDate":"2024-01-02T12:00:00Z","temperature":7,"weatherDescription":"Clouds","weatherIcon":"04d"}
	]`))

	got, err := c.GetForecast(context.Background(), "Oslo")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "/api/weather/forecast", (*reqs)[0].Path)
	assert.True(t, got[0].RequestDate.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 5.5, got[0].Temperature)
	assert.Equal(t, "04d", got[1].WeatherIcon)
}

func TestGetForecastBadTimestamp(t *testing.T) {
	c, _ := newTestClient(t, respond(http.StatusOK,
		`[{"requestDate":"soon","temperature":5,"weatherDescription":"Rain","weatherIcon":"10d"}]`))

	_, err := c.GetForecast(context.Background(), "Oslo")

	var malformedErr *MalformedResponseError
	assert.ErrorAs(t, err, &malformedErr)
}

func TestGetHistory(t *testing.T) {
	c, reqs := newTestClient(t, respond(http.StatusOK, `[
		{"id":7,"location":"Paris","temperature":18,"startDate":"2024-01-01","endDate":"2024-01-05"},
		{"id":"a1b2","location":"Rome","temperature":null,"startDate":null,"endDate":null}
	]`))

	got, err := c.GetHistory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/weather", (*reqs)[0].Path)
	assert.Equal(t, []models.HistoryRecord{
		{ID: "7", Location: "Paris", Temperature: 18, StartDate: "2024-01-01", EndDate: "2024-01-05"},
		{ID: "a1b2", Location: "Rome"},
	}, got)
}

func TestGetHistoryNull(t *testing.T) {
	c, _ := newTestClient(t, respond(http.StatusOK, `null`))

	got, err := c.GetHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetHistoryMissingID(t *testing.T) {
	c, _ := newTestClient(t, respond(http.StatusOK, `[{"location":"Paris"}]`))

	_, err := c.GetHistory(context.Background())

	var malformedErr *MalformedResponseError
	assert.ErrorAs(t, err, &malformedErr)
}

func TestCreateSendsExactlyThreeFields(t *testing.T) {
	c, reqs := newTestClient(t, respond(http.StatusCreated, ``))

	err := c.Create(context.Background(), models.SaveRequest{
		Location:  "Paris",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-05",
	})
	require.NoError(t, err)

	require.Len(t, *reqs, 1)
	assert.Equal(t, http.MethodPost, (*reqs)[0].Method)
	assert.Equal(t, "/api/weather", (*reqs)[0].Path)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte((*reqs)[0].Body), &body))
	assert.Equal(t, map[string]interface{}{
		"location":  "Paris",
		"startDate": "2024-01-01",
		"endDate":   "2024-01-05",
	}, body)
}

func TestUpdateAndDelete(t *testing.T) {
	c, reqs := newTestClient(t, respond(http.StatusNoContent, ``))

	require.NoError(t, c.Update(context.Background(), "42", models.SaveRequest{Location: "Rome"}))
	require.NoError(t, c.Delete(context.Background(), "a/b"))

	require.Len(t, *reqs, 2)
	assert.Equal(t, http.MethodPut, (*reqs)[0].Method)
	assert.Equal(t, "/api/weather/42", (*reqs)[0].Path)
	assert.JSONEq(t, `{"location":"Rome","startDate":"","endDate":""}`, (*reqs)[0].Body)
	assert.Equal(t, http.MethodDelete, (*reqs)[1].Method)
	assert.Equal(t, "/api/weather/a/b", (*reqs)[1].Path)
	assert.Empty(t, (*reqs)[1].Body)
}

func TestExportCSV(t *testing.T) {
	csv := "id,location,temperature\n1,Paris,18\n"
	c, reqs := newTestClient(t, respond(http.StatusOK, csv))

	got, err := c.ExportCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, csv, got)
	assert.Equal(t, "/api/weather/export", (*reqs)[0].Path)
}

func TestGetVideo(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "plain text", body: "https://www.youtube.com/watch?v=abc123\n"},
		{name: "json string", body: `"https://www.youtube.com/watch?v=abc123"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, reqs := newTestClient(t, respond(http.StatusOK, tt.body))

			got, err := c.GetVideo(context.Background(), "Paris")
			require.NoError(t, err)
			assert.Equal(t, "https://www.youtube.com/watch?v=abc123", got)
			assert.Equal(t, "/api/weather/video", (*reqs)[0].Path)
			assert.Equal(t, "location=Paris", (*reqs)[0].Query)
		})
	}
}

func TestGetVideoEmpty(t *testing.T) {
	c, _ := newTestClient(t, respond(http.StatusOK, ``))

	_, err := c.GetVideo(context.Background(), "Paris")

	var malformedErr *MalformedResponseError
	require.ErrorAs(t, err, &malformedErr)
	assert.ErrorIs(t, err, errEmptyVideoURL)
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		call    func(c *WeatherClient) error
		message string
	}{
		{
			name: "plain text body", status: http.StatusNotFound, body: "Location not found",
			call:    func(c *WeatherClient) error { _, err := c.GetCurrent(context.Background(), "Nowhere"); return err },
			message: "Location not found",
		},
		{
			name: "json message", status: http.StatusBadRequest, body: `{"message":"Invalid date range","status":400}`,
			call:    func(c *WeatherClient) error { return c.Create(context.Background(), models.SaveRequest{Location: "x"}) },
			message: "Invalid date range",
		},
		{
			name: "json error only", status: http.StatusInternalServerError, body: `{"error":"Internal Server Error"}`,
			call:    func(c *WeatherClient) error { return c.Delete(context.Background(), "1") },
			message: "Internal Server Error",
		},
		{
			name: "empty body falls back", status: http.StatusInternalServerError, body: "",
			call:    func(c *WeatherClient) error { _, err := c.GetHistory(context.Background()); return err },
			message: "Failed to fetch history",
		},
		{
			name: "html body falls back", status: http.StatusBadGateway, body: "<html>bad gateway</html>",
			call:    func(c *WeatherClient) error { _, err := c.ExportCSV(context.Background()); return err },
			message: "Failed to export",
		},
		{
			name: "update fallback", status: http.StatusConflict, body: "  ",
			call:    func(c *WeatherClient) error { return c.Update(context.Background(), "1", models.SaveRequest{}) },
			message: "Failed to update weather",
		},
		{
			name: "video fallback", status: http.StatusServiceUnavailable, body: "",
			call:    func(c *WeatherClient) error { _, err := c.GetVideo(context.Background(), "x"); return err },
			message: "Failed to fetch YouTube video",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, respond(tt.status, tt.body))

			err := tt.call(c)

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.status, reqErr.StatusCode)
			assert.Equal(t, tt.message, err.Error())
			assert.ErrorIs(t, err, errHTTPStatus)
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewWeatherClient(ClientConfig{BaseURL: base}, zap.NewNop())
	_, err := c.GetForecast(context.Background(), "Paris")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 0, reqErr.StatusCode)
	assert.Equal(t, "Failed to fetch weather", err.Error())
}

type countingHTTPClient struct {
	calls  int
	status int
}

func (c *countingHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.calls++
	rec := httptest.NewRecorder()
	rec.WriteHeader(c.status)
	return rec.Result(), nil
}

func TestNoRetryOnServerError(t *testing.T) {
	hc := &countingHTTPClient{status: http.StatusInternalServerError}
	c := NewWeatherClient(ClientConfig{BaseURL: "http://backend/api/weather", HTTPClient: hc}, zap.NewNop())

	err := c.Create(context.Background(), models.SaveRequest{Location: "Paris"})

	require.Error(t, err)
	assert.Equal(t, 1, hc.calls)
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	hc := &countingHTTPClient{status: http.StatusInternalServerError}
	c := NewWeatherClient(ClientConfig{
		BaseURL:        "http://backend/api/weather",
		HTTPClient:     hc,
		BreakerEnabled: true,
		Threshold:      2,
		BreakerTimeout: time.Minute,
	}, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := c.GetHistory(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, 2, hc.calls)

	_, err := c.GetHistory(context.Background())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Failed to fetch history", reqErr.Message)
	assert.False(t, errors.Is(err, errHTTPStatus))
	assert.Equal(t, 2, hc.calls, "open breaker must not issue a request")
}
