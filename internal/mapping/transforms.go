package mapping

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"bitrix-lead-relay/internal/models"
)

// Registry maps transform names to functions so mapping tables loaded from
// a file can reference transforms declaratively. It is assembled once at
// startup and read-only afterwards.
type Registry struct {
	transforms map[string]TransformFunc
}

// NewRegistry creates an empty transform registry.
func NewRegistry() *Registry {
	return &Registry{transforms: make(map[string]TransformFunc)}
}

// Register adds a named transform, replacing any previous registration.
func (r *Registry) Register(name string, fn TransformFunc) {
	r.transforms[name] = fn
}

// Get returns the transform registered under name.
func (r *Registry) Get(name string) (TransformFunc, bool) {
	fn, ok := r.transforms[name]
	return fn, ok
}

// Has reports whether a transform is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.transforms[name]
	return ok
}

// Names returns all registered transform names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.transforms))
	for name := range r.transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with the built-in lead transforms.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("trim_name", TrimName)
	r.Register("phone_work", PhoneWork)
	r.Register("email_work", EmailWork)
	r.Register("lead_title", LeadTitle)
	r.Register("call_comments", CallComments)
	return r
}

// Placeholder is rendered in composite summaries for every absent
// sub-field, so the CRM side always sees the same line structure.
const Placeholder = "—"

// mskZone is the fixed CRM display offset. Call timestamps arrive in UTC
// and the CRM audience works in UTC+3.
var mskZone = time.FixedZone("UTC+3", 3*60*60)

// TrimName trims surrounding whitespace from a string value.
func TrimName(raw interface{}, _ map[string]interface{}) (interface{}, error) {
	return strings.TrimSpace(asString(raw)), nil
}

// PhoneWork normalizes a phone number to bare digits and wraps it as a CRM
// multi-value field of type WORK. When the primary value carries no digits
// it falls back to the first usable entry of contact.phones.
func PhoneWork(raw interface{}, doc map[string]interface{}) (interface{}, error) {
	digits := phoneDigits(asString(raw))
	if digits == "" {
		if list, ok := Resolve(doc, "contact.phones").([]interface{}); ok {
			for _, item := range list {
				if digits = phoneDigits(asString(item)); digits != "" {
					break
				}
			}
		}
	}
	if digits == "" {
		return nil, nil
	}

	return []models.MultiField{{Value: digits, ValueType: "WORK"}}, nil
}

// EmailWork wraps an e-mail address as a CRM multi-value field of type WORK.
func EmailWork(raw interface{}, _ map[string]interface{}) (interface{}, error) {
	address := strings.TrimSpace(asString(raw))
	if address == "" {
		return nil, nil
	}

	return []models.MultiField{{Value: address, ValueType: "WORK"}}, nil
}

// LeadTitle builds the lead title from the first available identity in the
// document: the client name agreed on the call, the contact name, or the
// normalized phone number.
func LeadTitle(_ interface{}, doc map[string]interface{}) (interface{}, error) {
	name := strings.TrimSpace(asString(Resolve(doc, "call.agreements.client_name")))
	if name == "" {
		name = strings.TrimSpace(asString(Resolve(doc, "contact.name")))
	}
	if name == "" {
		name = phoneDigits(asString(Resolve(doc, "contact.phone")))
	}
	if name == "" {
		return "Call-center lead", nil
	}

	return "Call-center lead: " + name, nil
}

// CallComments assembles the multi-line call summary stored in the lead's
// COMMENTS field. Every absent sub-field renders as the placeholder so the
// summary keeps a fixed line structure.
func CallComments(_ interface{}, doc map[string]interface{}) (interface{}, error) {
	lines := []string{
		"Result: " + orPlaceholder(asString(Resolve(doc, "call.result.result_name"))),
		"Comment: " + orPlaceholder(asString(Resolve(doc, "call.result.comment"))),
		"Scenario: " + orPlaceholder(asString(Resolve(doc, "call.scenario_name"))),
		"Operator: " + orPlaceholder(asString(Resolve(doc, "call.operator.name"))),
		"Started: " + orPlaceholder(FormatCallTime(Resolve(doc, "call.started_at"))),
		"Duration: " + orPlaceholder(FormatDuration(Resolve(doc, "call.duration"))),
		"Tags: " + orPlaceholder(JoinList(Resolve(doc, "call.tags"), ", ")),
		"Recording: " + orPlaceholder(asString(Resolve(doc, "call.recording_url"))),
		"Contact comment: " + orPlaceholder(asString(Resolve(doc, "contact.comment"))),
	}

	return strings.Join(lines, "\n"), nil
}

// FormatDuration renders a duration in seconds as minutes:seconds, e.g.
// 125 -> "2:05". Negative or non-numeric input yields "".
func FormatDuration(raw interface{}) string {
	var seconds int
	switch v := raw.(type) {
	case float64:
		seconds = int(v)
	case int:
		seconds = v
	case int64:
		seconds = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return ""
		}
		seconds = parsed
	default:
		return ""
	}
	if seconds < 0 {
		return ""
	}

	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatCallTime renders a UTC call timestamp in the CRM display zone as
// DD.MM.YYYY HH:MM. RFC 3339 strings, "2006-01-02 15:04:05" strings and
// numeric unix seconds are accepted; anything else yields "".
func FormatCallTime(raw interface{}) string {
	var ts time.Time
	switch v := raw.(type) {
	case string:
		value := strings.TrimSpace(v)
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			parsed, err = time.Parse("2006-01-02 15:04:05", value)
			if err != nil {
				return ""
			}
		}
		ts = parsed
	case float64:
		ts = time.Unix(int64(v), 0)
	case int64:
		ts = time.Unix(v, 0)
	default:
		return ""
	}

	return ts.In(mskZone).Format("02.01.2006 15:04")
}

// JoinList joins the non-empty string forms of a list value with sep.
// Non-list input or a list with no usable entries yields "".
func JoinList(raw interface{}, sep string) string {
	list, ok := raw.([]interface{})
	if !ok {
		return ""
	}

	parts := make([]string, 0, len(list))
	for _, item := range list {
		if s := strings.TrimSpace(asString(item)); s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, sep)
}

// asString renders scalar document values as strings. JSON numbers decode
// as float64, so they are formatted without an exponent. Unsupported kinds
// yield "".
func asString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// phoneDigits strips everything but digits and normalizes Russian numbers
// to the 7-prefixed form the CRM deduplicates on.
func phoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	switch {
	case len(digits) == 11 && digits[0] == '8':
		return "7" + digits[1:]
	case len(digits) == 10 && digits[0] == '9':
		return "7" + digits
	}
	return digits
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
