package conversation

import (
	"regexp"
	"strconv"
	"strings"
)

// Fields is the structured record mined from a conversation window. Every
// field is independently present-or-absent: the zero value ("" or nil) means
// the pattern found nothing. Extraction only ever sets fields, never clears
// them; merging into prior state is the caller's job.
type Fields struct {
	Email         string   `json:"email,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Name          string   `json:"name,omitempty"`
	Zip           string   `json:"zip,omitempty"`
	ArrivalWindow string   `json:"window,omitempty"`
	Building      string   `json:"building,omitempty"`
	Pets          string   `json:"pets,omitempty"`
	OutdoorWater  string   `json:"outdoor_water,omitempty"`
	Address       string   `json:"address,omitempty"`
	Date          string   `json:"date,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	TotalPrice    *float64 `json:"total_price,omitempty"`

	SelectedService   string `json:"selected_service,omitempty"`
	CleaningBreakdown string `json:"cleaning_breakdown,omitempty"`
}

// Merge overlays src onto f. Only fields src actually set overwrite; absent
// src fields leave f untouched.
func (f *Fields) Merge(src Fields) {
	if src.Email != "" {
		f.Email = src.Email
	}
	if src.Phone != "" {
		f.Phone = src.Phone
	}
	if src.Name != "" {
		f.Name = src.Name
	}
	if src.Zip != "" {
		f.Zip = src.Zip
	}
	if src.ArrivalWindow != "" {
		f.ArrivalWindow = src.ArrivalWindow
	}
	if src.Building != "" {
		f.Building = src.Building
	}
	if src.Pets != "" {
		f.Pets = src.Pets
	}
	if src.OutdoorWater != "" {
		f.OutdoorWater = src.OutdoorWater
	}
	if src.Address != "" {
		f.Address = src.Address
	}
	if src.Date != "" {
		f.Date = src.Date
	}
	if src.Notes != "" {
		f.Notes = src.Notes
	}
	if src.TotalPrice != nil {
		v := *src.TotalPrice
		f.TotalPrice = &v
	}
	if src.SelectedService != "" {
		f.SelectedService = src.SelectedService
	}
	if src.CleaningBreakdown != "" {
		f.CleaningBreakdown = src.CleaningBreakdown
	}
}

// ---------- package-level compiled regexes ----------

var (
	emailRE = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRE = regexp.MustCompile(`(?:\+?1[\s.\-]*)?\(?[0-9]{3}\)?[\s.\-]*[0-9]{3}[\s.\-]*[0-9]{4}`)
	zipRE   = regexp.MustCompile(`\b[0-9]{5}\b`)

	nameLabeledRE  = regexp.MustCompile(`(?i:my name is|this is|\bname\s*(?::|is))\s*((?:[A-Z][A-Za-z'’\-]*\s+)+[A-Z][A-Za-z'’\-]*)`)
	nameWordlikeRE = regexp.MustCompile(`^[A-Z][A-Za-z.'’\-]*(?:\s+[A-Z][A-Za-z.'’\-]*){1,3}$`)

	morningWindowRE   = regexp.MustCompile(`(?i)\b8\s*(?:a\.?m\.?)?\s*(?:to|until|[-–—])\s*12\s*(?:p\.?m\.?)?\b`)
	afternoonWindowRE = regexp.MustCompile(`(?i)\b1\s*(?:p\.?m\.?)?\s*(?:to|until|[-–—])\s*5\s*(?:p\.?m\.?)?\b`)

	petsNoRE  = regexp.MustCompile(`(?i)\bno\s+pets?\b|\bpets?\s*:?\s*no\b`)
	petsYesRE = regexp.MustCompile(`(?i)\byes\b[^.\n]*\bpets?\b|\bpets?\s*:?\s*yes\b`)

	waterNoRE  = regexp.MustCompile(`(?i)\bno\b[^.\n]*\boutdoor water\b|\boutdoor water\b[^.\n]*\bno\b`)
	waterYesRE = regexp.MustCompile(`(?i)\boutdoor water\b[^.\n]*\b(?:yes|available|access\w*)\b|\byes\b[^.\n]*\boutdoor water\b|\bspigot\b`)

	addressRE = regexp.MustCompile(`(?i)\b[0-9]{1,6}\s+[A-Za-z0-9 .'\-]+?,?(?:\s+[A-Za-z .'\-]+?,)?\s*\b(?:GA|Georgia)\b,?\s+[0-9]{5}\b`)

	dateLabeledRE = regexp.MustCompile(`(?i)\b(?:cleaning date|preferred day|date)\s*:\s*([A-Za-z]+\.?\s+[0-9]{1,2}(?:st|nd|rd|th)?(?:,?\s+[0-9]{4})?|[0-9]{1,2}/[0-9]{1,2}(?:/[0-9]{2,4})?)`)
	slashDateRE   = regexp.MustCompile(`\b[0-9]{1,2}/[0-9]{1,2}(?:/[0-9]{2,4})?\b`)

	notesRE = regexp.MustCompile(`(?i)\bnotes?\s*:\s*([^\n]+)`)

	totalRE = regexp.MustCompile(`(?i)\b(?:new combined total|total)\b[^0-9$\n]*\$?\s*([0-9]+(?:,[0-9]{3})*(?:\.[0-9]+)?)`)

	carpetMentionRE     = regexp.MustCompile(`(?i)carpet`)
	upholsteryMentionRE = regexp.MustCompile(`(?i)upholstery|couch|sofa|loveseat|sectional`)
	ductMentionRE       = regexp.MustCompile(`(?i)\bducts?\b|air duct|furnace|dryer vent`)

	nonDigitRE = regexp.MustCompile(`[^0-9]`)
)

// shortReplyVocabulary are whole-message answers that look name-shaped but
// are categorical replies to earlier prompts.
var shortReplyVocabulary = map[string]struct{}{
	"yes": {}, "no": {}, "house": {}, "apartment": {}, "finalize": {},
	"proceed": {}, "basic": {}, "deep": {}, "carpet": {}, "upholstery": {},
	"ducts": {},
}

// service categories in fixed label order.
var serviceCategories = []struct {
	re        *regexp.Regexp
	label     string
	breakdown string
}{
	{carpetMentionRE, "Carpet", "Deep steam carpet cleaning"},
	{upholsteryMentionRE, "Upholstery", "Upholstery and furniture cleaning"},
	{ductMentionRE, "Air Duct", "Air duct, furnace and dryer vent cleaning"},
}

// ExtractFields mines the most recent window of history for customer and
// booking details. It is pure and deterministic: no match means an absent
// field, never an error. Later matches in the window beat earlier ones where
// a field has competing rules.
func ExtractFields(history []Message) Fields {
	var out Fields
	if len(history) == 0 {
		return out
	}

	window := windowMessages(history)
	text := windowText(history)

	if m := emailRE.FindString(text); m != "" {
		out.Email = strings.ToLower(m)
	}

	if m := phoneRE.FindString(text); m != "" {
		digits := nonDigitRE.ReplaceAllString(m, "")
		if len(digits) == 11 && digits[0] == '1' {
			digits = digits[1:]
		}
		if len(digits) == 10 {
			out.Phone = digits
		}
	}

	out.Name = extractName(text, window)

	if m := zipRE.FindString(text); m != "" {
		out.Zip = m
	}

	// Fixed two-slot arrival window detector. The afternoon check runs second
	// and overwrites when both shapes appear.
	if morningWindowRE.MatchString(text) {
		out.ArrivalWindow = "8 to 12"
	}
	if afternoonWindowRE.MatchString(text) {
		out.ArrivalWindow = "1 to 5"
	}

	// House is evaluated after apartment and overwrites.
	lower := strings.ToLower(text)
	if strings.Contains(lower, "apartment") {
		out.Building = "Apartment"
	}
	if strings.Contains(lower, "house") {
		out.Building = "House"
	}

	// "Yes" rules run second and overwrite for pets and outdoor water.
	if petsNoRE.MatchString(text) {
		out.Pets = "No"
	}
	if petsYesRE.MatchString(text) {
		out.Pets = "Yes"
	}
	if waterNoRE.MatchString(text) {
		out.OutdoorWater = "No"
	}
	if waterYesRE.MatchString(text) {
		out.OutdoorWater = "Yes"
	}

	if m := addressRE.FindString(text); m != "" {
		out.Address = strings.TrimSpace(m)
	}

	if m := dateLabeledRE.FindStringSubmatch(text); len(m) > 1 {
		out.Date = strings.TrimSpace(m[1])
	} else if m := slashDateRE.FindString(text); m != "" {
		out.Date = m
	}

	if m := notesRE.FindStringSubmatch(text); len(m) > 1 {
		out.Notes = truncateRunes(strings.TrimSpace(m[1]), 140)
	}

	// Every "total: $N" in the window is collected; the last occurrence wins
	// so a corrected quote beats the original.
	if matches := totalRE.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		raw := strings.ReplaceAll(matches[len(matches)-1][1], ",", "")
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			out.TotalPrice = &v
		}
	}

	var labels, breakdowns []string
	for _, cat := range serviceCategories {
		if cat.re.MatchString(text) {
			labels = append(labels, cat.label)
			breakdowns = append(breakdowns, cat.breakdown)
		}
	}
	if len(labels) > 0 {
		out.SelectedService = strings.Join(labels, " + ")
		out.CleaningBreakdown = strings.Join(breakdowns, " + ")
	}

	return out
}

// extractName applies the two-tier name policy: an explicit "my name is X"
// style phrasing anywhere in the window wins; otherwise fall back to the most
// recent user message that plausibly is a bare name reply.
func extractName(text string, window []Message) string {
	if m := nameLabeledRE.FindStringSubmatch(text); len(m) > 1 {
		name := strings.TrimSpace(m[1])
		name = strings.TrimPrefix(name, ": ")
		if rest, ok := strings.CutPrefix(name, "Is "); ok {
			name = rest
		}
		if name != "" {
			return name
		}
	}

	for i := len(window) - 1; i >= 0; i-- {
		msg := window[i]
		if msg.Role != RoleUser {
			continue
		}
		candidate := strings.TrimSpace(msg.Content)
		if candidate == "" || len(candidate) > 60 {
			continue
		}
		if strings.ContainsAny(candidate, "@0123456789") {
			continue
		}
		if _, fixed := shortReplyVocabulary[strings.ToLower(candidate)]; fixed {
			continue
		}
		if nameWordlikeRE.MatchString(candidate) {
			return candidate
		}
	}
	return ""
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
