package model

// NotificationType is the closed set of notification categories.
type NotificationType string

const (
	TypeTomarCiencia NotificationType = "TOMAR_CIENCIA"
	TypeManifestarSe NotificationType = "MANIFESTAR_SE"
	TypeCitar        NotificationType = "CITAR"
	TypeIntimar      NotificationType = "INTIMAR"
	TypeOutros       NotificationType = "OUTROS" // catch-all
)

// NotificationTypes lists every member of the enumeration in declaration order.
func NotificationTypes() []NotificationType {
	return []NotificationType{TypeTomarCiencia, TypeManifestarSe, TypeCitar, TypeIntimar, TypeOutros}
}

// ParseNotificationType returns the matching member, or TypeOutros for anything
// outside the enumeration.
func ParseNotificationType(s string) NotificationType {
	for _, t := range NotificationTypes() {
		if string(t) == s {
			return t
		}
	}
	return TypeOutros
}

// NotificationRecord is the canonical, LLM-facing notification shape.
type NotificationRecord struct {
	Date       string           `json:"date"`
	Court      string           `json:"court"`
	LawyerName string           `json:"lawyer_name"`
	OAB        string           `json:"oab,omitempty"`
	CaseNumber string           `json:"case_number"`
	Type       NotificationType `json:"type"`
	Summary    string           `json:"summary"`
	URL        string           `json:"url,omitempty"`
	Deadline   string           `json:"deadline"`
	Actions    []string         `json:"actions"`
}

// Clone returns a copy that shares no slices with r.
func (r NotificationRecord) Clone() NotificationRecord {
	if r.Actions != nil {
		r.Actions = append([]string(nil), r.Actions...)
	}
	return r
}

// CloneRecords deep-copies a record slice. A nil input yields nil.
func CloneRecords(in []NotificationRecord) []NotificationRecord {
	if in == nil {
		return nil
	}
	out := make([]NotificationRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
