// Package normalizer maps heterogeneous DJEN records onto the canonical
// NotificationRecord schema.
package normalizer

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/crimson-sun/djenbridge/internal/engine/classifier"
	"github.com/crimson-sun/djenbridge/internal/engine/compactor"
	"github.com/crimson-sun/djenbridge/internal/engine/textnorm"
	"github.com/crimson-sun/djenbridge/internal/model"
)

var dateLayouts = []string{
	model.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// Normalizer is stateless apart from its collaborators and safe for
// concurrent use.
type Normalizer struct {
	classifier *classifier.Classifier
	compactor  *compactor.Compactor
}

// New creates a Normalizer.
func New(cls *classifier.Classifier, cmp *compactor.Compactor) *Normalizer {
	return &Normalizer{classifier: cls, compactor: cmp}
}

// Normalize maps one raw record. Deadline and Actions are left empty for
// inference to fill. A missing or malformed required field returns a
// *model.MissingFieldError or *model.MalformedFieldError.
func (n *Normalizer) Normalize(raw model.RawNotification) (model.NotificationRecord, error) {
	return n.NormalizeFor(raw, "")
}

// NormalizeFor is Normalize for a record fetched on behalf of party. When
// the record lists several lawyers, name and OAB come from the one whose
// name matches party instead of the first.
func (n *Normalizer) NormalizeFor(raw model.RawNotification, party string) (model.NotificationRecord, error) {
	var rec model.NotificationRecord

	caseNumber, err := required(raw, "case_number", caseNumberKeys, CanonicalCaseNumber)
	if err != nil {
		return rec, err
	}
	court, err := required(raw, "court", courtKeys, canonicalCourt)
	if err != nil {
		return rec, err
	}
	date, err := required(raw, "date", dateKeys, canonicalDate)
	if err != nil {
		return rec, err
	}

	text := extract(raw, textKeys).value
	category := extract(raw, categoryKeys).value
	cls := n.classifier.Classify(category, text)

	url := extract(raw, urlKeys).value
	if url == "" {
		url = model.DocumentURL(court, caseNumber)
	}

	idx := recipient(raw, party)

	return model.NotificationRecord{
		Date:       date,
		Court:      court,
		LawyerName: textnorm.UpperName(extract(raw, recipientKeys(lawyerKeys, idx)).value),
		OAB:        canonicalOAB(extract(raw, recipientKeys(oabNumberKeys, idx)).value, extract(raw, recipientKeys(oabUFKeys, idx)).value),
		CaseNumber: caseNumber,
		Type:       cls.Type,
		Summary:    n.compactor.Summarize(text),
		URL:        url,
	}, nil
}

func required(raw model.RawNotification, field string, keys []string, canon func(string) (string, bool)) (string, error) {
	x := extract(raw, keys)
	if x.value == "" {
		if x.bad != nil {
			return "", &model.MalformedFieldError{Field: field, Value: fmt.Sprint(x.bad)}
		}
		return "", &model.MissingFieldError{Field: field}
	}
	v, ok := canon(x.value)
	if !ok {
		return "", &model.MalformedFieldError{Field: field, Value: x.value}
	}
	return v, nil
}

// CanonicalCaseNumber formats 20-digit CNJ numbers as
// NNNNNNN-DD.AAAA.J.TR.OOOO whatever punctuation they arrived with. Other
// numbers keep their digit groups, joined by dots.
func CanonicalCaseNumber(s string) (string, bool) {
	groups := strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if len(groups) == 0 {
		return "", false
	}
	digits := strings.Join(groups, "")
	if len(digits) == 20 {
		return fmt.Sprintf("%s-%s.%s.%s.%s.%s",
			digits[0:7], digits[7:9], digits[9:13], digits[13:14], digits[14:16], digits[16:20]), true
	}
	return strings.Join(groups, "."), true
}

func canonicalCourt(s string) (string, bool) {
	s = strings.ToUpper(strings.Join(strings.Fields(s), ""))
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", false
		}
	}
	return s, s != ""
}

func canonicalDate(s string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(model.DateLayout), true
		}
	}
	return "", false
}

// canonicalOAB renders "123456/MG" when the UF is known. A number that
// already carries its UF is only uppercased.
func canonicalOAB(number, uf string) string {
	number = strings.ToUpper(strings.Join(strings.Fields(number), ""))
	if number == "" {
		return ""
	}
	uf = strings.ToUpper(strings.TrimSpace(uf))
	if uf == "" || strings.Contains(number, "/") {
		return number
	}
	return number + "/" + uf
}
