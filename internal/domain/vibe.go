package domain

// VibeSnapshot is the generated "vibe coding" fortune. The shape mirrors the
// JSON schema the generative prompt demands.
type VibeSnapshot struct {
	Meta           VibeMeta           `json:"meta"`
	Scores         VibeScores         `json:"scores"`
	Almanac        VibeAlmanac        `json:"almanac"`
	Astrology      VibeAstrology      `json:"astrology"`
	IChing         VibeIChing         `json:"iching"`
	Recommendation VibeRecommendation `json:"recommendation"`
}

type VibeMeta struct {
	Date          string `json:"date"`
	Sign          string `json:"sign"`
	EngineVersion string `json:"engine_version"`
}

type VibeScores struct {
	VibeScore int    `json:"vibe_score"`
	Rating    string `json:"rating"`
}

type VibeAlmanac struct {
	GoodFor     []string `json:"good_for"`
	BadFor      []string `json:"bad_for"`
	Description string   `json:"description"`
}

type VibeAstrology struct {
	PlanetStatus string `json:"planet_status"`
	DevImpact    string `json:"dev_impact"`
}

type VibeIChing struct {
	Hexagram       string `json:"hexagram"`
	SystemStatus   string `json:"system_status"`
	Interpretation string `json:"interpretation"`
}

type VibeRecommendation struct {
	Verdict    string `json:"verdict"`
	MusicGenre string `json:"music_genre"`
}
