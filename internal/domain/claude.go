package domain

// UsageSnapshot holds monthly and daily AI-tool usage aggregates.
type UsageSnapshot struct {
	MonthlyTotalCost   float64  `json:"monthlyTotalCost"`
	MonthlyTotalTokens int64    `json:"monthlyTotalTokens"`
	TodayCost          float64  `json:"todayCost"`
	TodayTokens        int64    `json:"todayTokens"`
	ModelsUsed         []string `json:"modelsUsed"`
	ResetDate          string   `json:"resetDate"`
}
