// Package categorize infers a product category for a material from its
// free-text fields using deterministic weighted pattern matching. It keeps
// no state of its own: learned token aliases are passed in as a snapshot and
// the caller persists the result onto the material record.
package categorize

import (
	"regexp"
	"sort"
	"strings"

	"github.com/georgemallousis-design/MyWarehouse/internal/model"
)

// AliasWeight is the score added per matched alias token.
const AliasWeight = 0.25

// rule adds weight to a category when its pattern matches the normalized
// material text. Patterns are written in normalized form (lowercase,
// punctuation collapsed to spaces).
type rule struct {
	pattern  *regexp.Regexp
	weight   float64
	category string
	label    string
}

// rules is the fixed ordered rule list for common security equipment naming
// conventions. Order matters: when two categories tie on score, the one
// whose category appears first here wins.
var rules = []rule{
	// Cameras
	{regexp.MustCompile(`\bds 2cd`), 0.6, "Camera", "ds-2cd"},
	{regexp.MustCompile(`\bipc\b`), 0.5, "Camera", "ipc"},
	{regexp.MustCompile(`\bcamera\b`), 0.5, "Camera", "camera"},
	{regexp.MustCompile(`\bip cam\b|\bipcam\b|\bbullet\b|\bdome\b`), 0.4, "Camera", "cam_keyword"},
	// NVR
	{regexp.MustCompile(`\bnvr\d*\b`), 0.6, "NVR", "nvr"},
	{regexp.MustCompile(`\bds 76|\bdhi nvr`), 0.5, "NVR", "nvr_prefix"},
	// DVR/XVR
	{regexp.MustCompile(`\bdvr\b`), 0.5, "DVR", "dvr"},
	{regexp.MustCompile(`\bxvr\b`), 0.5, "DVR", "xvr"},
	// Switches / PoE
	{regexp.MustCompile(`\bpoe\b`), 0.3, "Switch", "poe"},
	{regexp.MustCompile(`\bswitch\b|\bsg\d`), 0.5, "Switch", "switch"},
	// Sensors
	{regexp.MustCompile(`\bsensor\b|\bpir\b|\bmotion\b`), 0.5, "Sensor", "sensor"},
	{regexp.MustCompile(`\bmagnetic\b|\bdoor contact\b|\bdoorcontact\b`), 0.4, "Sensor", "doorcontact"},
	// Panels / Keypads
	{regexp.MustCompile(`\bpanel\b|\bhub\b|\bcontrol\b|\bkeypad\b`), 0.5, "Panel", "panel"},
	{regexp.MustCompile(`\bds pk`), 0.5, "Panel", "ds-pk"},
	// Access control / locks
	{regexp.MustCompile(`\breader\b|\baccess\b|\block\b|\bstrike\b`), 0.5, "Access Control", "access"},
	// Siren
	{regexp.MustCompile(`\bsiren\b|\bhorn\b`), 0.5, "Siren", "siren"},
	// Power
	{regexp.MustCompile(`\bups\b|\bpsu\b|\bpower supply\b`), 0.5, "Power", "power"},
}

// rulePrecedence maps each rule-list category to the position of its first
// rule, for tie-breaking. Categories known only through aliases rank after
// every rule category, alphabetically.
var rulePrecedence = func() map[string]int {
	p := make(map[string]int)
	for i, r := range rules {
		if _, ok := p[r.category]; !ok {
			p[r.category] = i
		}
	}
	return p
}()

// synonyms maps transliterated domain terms to their canonical form. Applied
// before punctuation stripping since the keys are non-ASCII.
var synonyms = map[string]string{
	"κάμερα": "camera",
	"καμερα": "camera",
	"kamera": "camera",
}

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	familyRe     = regexp.MustCompile(`^([A-Za-z]+-\d*[A-Za-z]*\d+)`)
)

// Normalize lowercases text, substitutes transliteration synonyms, strips
// punctuation and collapses whitespace.
func Normalize(text string) string {
	text = strings.ToLower(text)
	for k, v := range synonyms {
		text = strings.ReplaceAll(text, k, v)
	}
	text = nonAlnumRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Family extracts a model family prefix used to group variants of the same
// product line, e.g. DS-2CD2343G2-I -> DS-2CD2343. Falls back to the first
// whitespace-delimited token of the model string.
func Family(modelStr string) string {
	if m := familyRe.FindStringSubmatch(modelStr); m != nil {
		return m[1]
	}
	if fields := strings.Fields(modelStr); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// Result is the categorizer's verdict for one material.
type Result struct {
	Category   string
	Confidence float64
	Family     string
	Evidence   []string
}

// Guess scores the material's text against the rule list and alias snapshot
// and returns the best category, a confidence in [0,1] and the model family.
// Given identical inputs the result is identical: ties on the top score go to
// the category appearing earliest in the rule list.
func Guess(m *model.Material, aliases map[string]string) Result {
	text := Normalize(strings.Join([]string{m.Name, m.Model, m.Producer, m.Description}, " "))
	res := Result{Family: Family(m.Model)}

	scores := make(map[string]float64)
	evidence := make(map[string][]string)

	for _, r := range rules {
		if r.pattern.MatchString(text) {
			scores[r.category] += r.weight
			evidence[r.category] = append(evidence[r.category], r.label)
		}
	}

	// Alias tokens, in sorted order so evidence lists are stable.
	tokens := strings.Fields(text)
	sort.Strings(tokens)
	seen := make(map[string]bool)
	for _, token := range tokens {
		if seen[token] {
			continue
		}
		seen[token] = true
		if cat, ok := aliases[token]; ok {
			scores[cat] += AliasWeight
			evidence[cat] = append(evidence[cat], "alias:"+token)
		}
	}

	if len(scores) == 0 {
		return res
	}

	best := ""
	for cat := range scores {
		if best == "" || better(cat, best, scores) {
			best = cat
		}
	}

	res.Category = best
	res.Confidence = min(1.0, scores[best])
	res.Evidence = evidence[best]
	return res
}

// better reports whether category a beats b: higher score first, then
// earlier rule-list precedence, then name.
func better(a, b string, scores map[string]float64) bool {
	if scores[a] != scores[b] {
		return scores[a] > scores[b]
	}
	pa, oka := rulePrecedence[a]
	pb, okb := rulePrecedence[b]
	if oka != okb {
		return oka
	}
	if oka && pa != pb {
		return pa < pb
	}
	return a < b
}
