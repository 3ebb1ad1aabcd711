package domain

// WeatherSnapshot is the latest known weather reading. AQI fields are
// optional: a failed air-quality lookup leaves them nil/empty while the rest
// of the snapshot stays valid.
type WeatherSnapshot struct {
	Temperature int    `json:"temperature"`
	Condition   string `json:"condition"`
	Humidity    int    `json:"humidity"`
	Location    string `json:"location"`
	AQI         *int   `json:"aqi,omitempty"`
	AQILevel    string `json:"aqiLevel,omitempty"`
}
