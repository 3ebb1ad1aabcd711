package weather

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"

	"github.com/forcelab-tw/forcedesk/internal/config"
	"github.com/forcelab-tw/forcedesk/internal/domain"
	"github.com/forcelab-tw/forcedesk/internal/ports"
)

// WMO weather codes mapped to the fixed condition categories.
var wmoConditions = map[int]string{
	0:  "sunny",
	1:  "sunny",
	2:  "partly-cloudy",
	3:  "cloudy",
	45: "cloudy",
	48: "cloudy",
	51: "rainy",
	53: "rainy",
	55: "rainy",
	56: "rainy",
	57: "rainy",
	61: "rainy",
	63: "rainy",
	65: "rainy",
	66: "rainy",
	67: "rainy",
	71: "snowy",
	73: "snowy",
	75: "snowy",
	77: "snowy",
	80: "rainy",
	81: "rainy",
	82: "rainy",
	85: "snowy",
	86: "snowy",
	95: "stormy",
	96: "stormy",
	99: "stormy",
}

// conditionForCode maps a WMO code to a category; unknown codes fall back
// to cloudy.
func conditionForCode(code int) string {
	if condition, ok := wmoConditions[code]; ok {
		return condition
	}
	return "cloudy"
}

// aqiLevel buckets a European AQI value into the fixed tier labels.
func aqiLevel(aqi int) string {
	switch {
	case aqi <= 20:
		return "優"
	case aqi <= 40:
		return "良"
	case aqi <= 60:
		return "普通"
	case aqi <= 80:
		return "不良"
	case aqi <= 100:
		return "差"
	default:
		return "危險"
	}
}

// Adapter resolves a coarse location by IP, then polls the forecast and
// air-quality services.
type Adapter struct {
	fetcher ports.Fetcher
	cfg     config.WeatherConfig
	logger  *slog.Logger
}

// NewAdapter wires the fetcher and endpoints.
func NewAdapter(fetcher ports.Fetcher, cfg config.WeatherConfig, logger *slog.Logger) *Adapter {
	return &Adapter{fetcher: fetcher, cfg: cfg, logger: logger}
}

type geoResponse struct {
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
}

type airQualityResponse struct {
	Current struct {
		EuropeanAQI *float64 `json:"european_aqi"`
	} `json:"current"`
}

// Poll returns the current weather snapshot. The air-quality lookup fails
// independently: its error leaves the AQI fields empty without invalidating
// the snapshot.
func (a *Adapter) Poll(ctx context.Context) (*domain.WeatherSnapshot, error) {
	var geo geoResponse
	if err := a.fetcher.FetchJSON(ctx, a.cfg.GeoURL, &geo); err != nil {
		return nil, fmt.Errorf("geolocate: %w", err)
	}

	var forecast forecastResponse
	if err := a.fetcher.FetchJSON(ctx, a.forecastURL(geo.Lat, geo.Lon), &forecast); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}

	location := geo.City
	if location == "" {
		location = "未知位置"
	}

	snapshot := &domain.WeatherSnapshot{
		Temperature: int(math.Round(forecast.Current.Temperature)),
		Condition:   conditionForCode(forecast.Current.WeatherCode),
		Humidity:    int(forecast.Current.Humidity),
		Location:    location,
	}

	var air airQualityResponse
	if err := a.fetcher.FetchJSON(ctx, a.airQualityURL(geo.Lat, geo.Lon), &air); err != nil {
		a.debug("air quality lookup failed", "error", err)
	} else if air.Current.EuropeanAQI != nil {
		aqi := int(math.Round(*air.Current.EuropeanAQI))
		snapshot.AQI = &aqi
		snapshot.AQILevel = aqiLevel(aqi)
	}

	return snapshot, nil
}

func (a *Adapter) forecastURL(lat, lon float64) string {
	query := url.Values{}
	query.Set("latitude", formatCoord(lat))
	query.Set("longitude", formatCoord(lon))
	query.Set("current", "temperature_2m,relative_humidity_2m,weather_code")
	query.Set("timezone", "auto")
	return a.cfg.ForecastURL + "?" + query.Encode()
}

func (a *Adapter) airQualityURL(lat, lon float64) string {
	query := url.Values{}
	query.Set("latitude", formatCoord(lat))
	query.Set("longitude", formatCoord(lon))
	query.Set("current", "european_aqi")
	return a.cfg.AirQualityURL + "?" + query.Encode()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (a *Adapter) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
