// Package weather reads current conditions from the Open-Meteo forecast API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"menuboard/internal/config"
)

type Conditions struct {
	Temperature              float64   `json:"temperature"`
	PrecipitationProbability int       `json:"precipitationProbability"`
	Code                     int       `json:"code"`
	Emoji                    string    `json:"emoji"`
	Description              string    `json:"description"`
	FetchedAt                time.Time `json:"fetchedAt"`
}

// Label is the one-line pill text, e.g. "🌤️ 24° · Despejado · Lluvia 10%".
func (c Conditions) Label() string {
	return fmt.Sprintf("%s %d° · %s · Lluvia %d%%", c.Emoji, int(math.Round(c.Temperature)), c.Description, c.PrecipitationProbability)
}

type Client struct {
	baseURL    string
	lat, lon   float64
	httpClient *http.Client
}

func NewClient(cfg config.Config) *Client {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    cfg.WeatherBaseURL,
		lat:        cfg.WeatherLat,
		lon:        cfg.WeatherLon,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type forecastResponse struct {
	Current *struct {
		Temperature              float64  `json:"temperature_2m"`
		PrecipitationProbability *float64 `json:"precipitation_probability"`
		WeatherCode              int      `json:"weather_code"`
	} `json:"current"`
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

func (c *Client) Current(ctx context.Context) (Conditions, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return Conditions{}, err
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(c.lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.lon, 'f', -1, 64))
	q.Set("current", "temperature_2m,precipitation_probability,weather_code")
	q.Set("timezone", "auto")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Conditions{}, err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Conditions{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Conditions{}, err
	}

	var payload forecastResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Conditions{}, fmt.Errorf("weather: decode: %w", err)
	}
	if resp.StatusCode != http.StatusOK || payload.Error {
		return Conditions{}, fmt.Errorf("weather: status=%d reason=%s", resp.StatusCode, payload.Reason)
	}
	if payload.Current == nil {
		return Conditions{}, fmt.Errorf("weather: response has no current block")
	}

	cond := Conditions{
		Temperature: payload.Current.Temperature,
		Code:        payload.Current.WeatherCode,
		FetchedAt:   time.Now().UTC(),
	}
	if p := payload.Current.PrecipitationProbability; p != nil {
		cond.PrecipitationProbability = int(math.Round(*p))
	}
	cond.Emoji, cond.Description = Describe(cond.Code)
	return cond, nil
}

// Describe maps a WMO weather code to an emoji and a Spanish description.
func Describe(code int) (string, string) {
	switch {
	case code == 0:
		return "🌤️", "Despejado"
	case code == 1:
		return "🌤️", "Mayormente despejado"
	case code == 2:
		return "🌤️", "Parcialmente nublado"
	case code == 3:
		return "🌤️", "Nublado"
	case code >= 45 && code <= 48:
		return "🌫️", "Niebla"
	case code >= 51 && code <= 57:
		return "🌧️", "Llovizna"
	case code >= 58 && code <= 67:
		return "🌧️", "Lluvioso"
	case code >= 71 && code <= 77:
		return "❄️", "Nieve"
	case code >= 80 && code <= 82:
		return "🌦️", "Chaparrones"
	case code >= 95:
		return "⛈️", "Tormenta"
	default:
		return "☁️", "Nublado"
	}
}
