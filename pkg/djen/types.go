package djen

import "github.com/crimson-sun/djenbridge/internal/model"

// Notification is a normalized court notification.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Notification struct {
	Date       string   `json:"date"`          // YYYY-MM-DD
	Court      string   `json:"court"`         // TJMG, TJSP, ...
	LawyerName string   `json:"lawyer_name"`   // uppercase, diacritics kept
	OAB        string   `json:"oab,omitempty"` // 123456/MG
	CaseNumber string   `json:"case_number"`   // CNJ format when 20 digits
	Type       string   `json:"type"`          // TOMAR_CIENCIA, MANIFESTAR_SE, CITAR, INTIMAR, OUTROS
	Summary    string   `json:"summary"`       // whitespace-collapsed, truncated
	URL        string   `json:"url,omitempty"` // source link
	Deadline   string   `json:"deadline"`      // nominal period, e.g. "15 days"
	Actions    []string `json:"actions"`       // suggested next steps
}

// Query selects notifications for one lawyer over a date range.
type Query struct {
	LawyerName string
	OAB        string // optional, "123456" or "123456/MG"
	DateStart  string // YYYY-MM-DD
	DateEnd    string // YYYY-MM-DD, not before DateStart
	Court      string // optional court code
	ClientKey  string // rate-limit bucket; empty shares one anonymous bucket
}

// Result is a Fetch answer.
type Result struct {
	Notifications []Notification
	Stale         bool   // served from fallback data
	Source        string // upstream, cache, fallback-cache, fallback-mock
	FetchID       string // correlation id when an upstream fetch ran
}

// Court is a supported court.
type Court struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Error types returned by Fetch. Inspect them with errors.As.
type (
	InvalidQueryError        = model.InvalidQueryError
	RateLimitedError         = model.RateLimitedError
	UpstreamUnavailableError = model.UpstreamUnavailableError
	MissingFieldError        = model.MissingFieldError
	MalformedFieldError      = model.MalformedFieldError
)

func fromRecord(r model.NotificationRecord) Notification {
	return Notification{
		Date:       r.Date,
		Court:      r.Court,
		LawyerName: r.LawyerName,
		OAB:        r.OAB,
		CaseNumber: r.CaseNumber,
		Type:       string(r.Type),
		Summary:    r.Summary,
		URL:        r.URL,
		Deadline:   r.Deadline,
		Actions:    append([]string(nil), r.Actions...),
	}
}

func (q Query) internal() model.Query {
	return model.Query{
		LawyerName: q.LawyerName,
		OAB:        q.OAB,
		DateStart:  q.DateStart,
		DateEnd:    q.DateEnd,
		Court:      q.Court,
		ClientKey:  q.ClientKey,
	}
}
