package sommelier

// Domain is the topical area a question was classified into.
type Domain string

// Domains reported by the service.
const (
	DomainProduct        Domain = "product"
	DomainMembership     Domain = "membership"
	DomainLoyalty        Domain = "loyalty"
	DomainVisiting       Domain = "visiting"
	DomainProduction     Domain = "production"
	DomainSustainability Domain = "sustainability"
	DomainMerchandise    Domain = "merchandise"
	DomainBusinessHours  Domain = "business_hours"
	DomainGeneral        Domain = "general"
)

// Classification describes how the service understood a question.
type Classification struct {
	Domain            Domain   `json:"domain"`
	Subtype           string   `json:"subtype,omitempty"`
	IsSpecificEntity  bool     `json:"is_specific_entity"`
	IsConfirmedEntity bool     `json:"is_confirmed_entity"`
	IsGenericEntity   bool     `json:"is_generic_entity"`
	IsFollowUp        bool     `json:"is_follow_up"`
	EntityName        string   `json:"entity_name,omitempty"`
	EntityPattern     string   `json:"entity_pattern,omitempty"`
	EntityTerms       []string `json:"entity_terms,omitempty"`
	Family            string   `json:"family,omitempty"`
	PreferredVariant  string   `json:"preferred_variant,omitempty"`
}

// Answer is the response to a question.
type Answer struct {
	Text           string         `json:"answer"`
	Sources        []string       `json:"sources"`
	Classification Classification `json:"classification"`
	// Clarification is set when the service asks the user to pick one of several products.
	Clarification bool `json:"clarification"`
	// FollowUp is set when the question resolved an earlier clarification.
	FollowUp  bool   `json:"follow_up"`
	Cached    bool   `json:"cached"`
	RequestID string `json:"request_id"`
}

// HealthStatus represents the aggregated service health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"
}

// Healthy reports whether every component is operational.
func (h HealthStatus) Healthy() bool { return h.Status == "ok" }

// Usage is the synthesis token budget of the service.
type Usage struct {
	Provider         string `json:"provider"`
	DailyUsed        int64  `json:"daily_used"`
	DailyLimit       int64  `json:"daily_limit"`
	DailyRemaining   int64  `json:"daily_remaining"`
	MonthlyUsed      int64  `json:"monthly_used"`
	MonthlyLimit     int64  `json:"monthly_limit"`
	MonthlyRemaining int64  `json:"monthly_remaining"`
	Action           string `json:"action"`
}

type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

type classifyResponse struct {
	Question       string         `json:"question"`
	Classification Classification `json:"classification"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
