package domain

// Fortune carries the five numeric fortune scores.
type Fortune struct {
	All    int `json:"all"`
	Health int `json:"health"`
	Love   int `json:"love"`
	Money  int `json:"money"`
	Work   int `json:"work"`
}

// FortuneText carries the per-aspect fortune descriptions.
type FortuneText struct {
	All    string `json:"all"`
	Health string `json:"health"`
	Love   string `json:"love"`
	Money  string `json:"money"`
	Work   string `json:"work"`
}

// HoroscopeSnapshot is the daily horoscope snapshot for the configured sign.
type HoroscopeSnapshot struct {
	Title              string      `json:"title"`
	Type               string      `json:"type"`
	Fortune            Fortune     `json:"fortune"`
	FortuneText        FortuneText `json:"fortunetext"`
	Index              FortuneText `json:"index"`
	LuckyColor         string      `json:"luckycolor"`
	LuckyConstellation string      `json:"luckyconstellation"`
	LuckyNumber        string      `json:"luckynumber"`
	LastUpdate         string      `json:"lastUpdate"`
}
