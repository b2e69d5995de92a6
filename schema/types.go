package schema

import "time"

// Origin identifies which gathering branch produced a context item.
type Origin string

const (
	OriginDocumentStore Origin = "document-store"
	OriginExternalTool  Origin = "external-tool"
	OriginLiveSearch    Origin = "live-search"
)

// ContextItem is one unit of retrieved context, regardless of where it
// came from. Score is the branch's own relevance estimate in [0,1];
// branches that have no native score report a neutral constant.
type ContextItem struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	URL     string  `json:"url,omitempty"`
	Score   float64 `json:"score"`
	Origin  Origin  `json:"origin"`
}

// SafetyLevel orders the triage tiers. Higher values are more severe.
type SafetyLevel int

const (
	SafetyNone SafetyLevel = iota
	SafetyCaution
	SafetyUrgent
	SafetyEmergency
)

func (l SafetyLevel) String() string {
	switch l {
	case SafetyEmergency:
		return "emergency"
	case SafetyUrgent:
		return "urgent"
	case SafetyCaution:
		return "caution"
	default:
		return "none"
	}
}

// SafetyAssessment carries the highest tier matched plus every phrase
// that matched across all tiers.
type SafetyAssessment struct {
	Level   SafetyLevel `json:"level"`
	Matched []string    `json:"matched,omitempty"`
}

// ModelResult is a completed generation from one model provider.
type ModelResult struct {
	Text      string `json:"text"`
	Provider  string `json:"provider"`
	TokensIn  int    `json:"tokens_in,omitempty"`
	TokensOut int    `json:"tokens_out,omitempty"`
}

// QueryRequest is the inbound query with its language settings.
// UseCache and IncludeSources are tri-state so an absent JSON field
// keeps the default of true.
type QueryRequest struct {
	Text           string `json:"query"`
	SourceLang     string `json:"source_lang,omitempty"`
	TargetLang     string `json:"target_lang,omitempty"`
	Translate      bool   `json:"translate,omitempty"`
	UseCache       *bool  `json:"use_cache,omitempty"`
	IncludeSources *bool  `json:"include_sources,omitempty"`
	UserID         string `json:"user_id,omitempty"`
}

// CacheEnabled reports whether the response cache may serve or store
// this request. Defaults to true when the flag is absent.
func (r QueryRequest) CacheEnabled() bool {
	return r.UseCache == nil || *r.UseCache
}

// SourcesEnabled reports whether the response should carry source
// citations. Defaults to true when the flag is absent.
func (r QueryRequest) SourcesEnabled() bool {
	return r.IncludeSources == nil || *r.IncludeSources
}

// QueryResponse is the final pipeline output. Success is false only
// when every generation provider failed and the degraded message was
// substituted; partial context loss does not clear it.
type QueryResponse struct {
	RequestID        string   `json:"request_id"`
	OriginalQuery    string   `json:"original_query"`
	ResponseText     string   `json:"response_text"`
	SafetyLevel      string   `json:"safety_level"`
	Sources          []string `json:"sources"`
	ProcessingTimeMS int64    `json:"processing_time_ms"`
	Success          bool     `json:"success"`
	Error            string   `json:"error,omitempty"`
}

// HistoryRecord is one persisted query for auditing.
type HistoryRecord struct {
	RequestID    string
	UserID       string
	Query        string
	ResponseText string
	Lang         string
	SafetyLevel  string
	Sources      []string
	Success      bool
	LatencyMS    int64
	CreatedAt    time.Time
}
