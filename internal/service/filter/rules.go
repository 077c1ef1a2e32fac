package filter

import (
	"fmt"
	"regexp"
	"strings"

	"promptgate/config"
	"promptgate/internal/core"
)

// Rule 一條比對規則；Regex=false 時為不分大小寫的子字串
type Rule struct {
	Category core.Category
	Pattern  string
	Severity core.Severity
	Regex    bool

	re *regexp.Regexp
}

func (r Rule) matches(lower, original string) bool {
	if r.re != nil {
		return r.re.MatchString(original)
	}
	return strings.Contains(lower, r.Pattern)
}

// DefaultRules 未設定 FILTER.RULES 時使用；只錨定字首，涵蓋詞形變化 (hateful、violently) 又不讓 "whatever" 命中 "hate"
func DefaultRules() []config.FilterRule {
	return []config.FilterRule{
		{Category: string(core.CategoryViolence), Pattern: `\bviolen`, Severity: string(core.SeverityHigh), Regex: true},
		{Category: string(core.CategoryViolence), Pattern: `\bdangerous`, Severity: string(core.SeverityHigh), Regex: true},
		{Category: string(core.CategoryExplicit), Pattern: `\bexplicit`, Severity: string(core.SeverityMedium), Regex: true},
		{Category: string(core.CategoryExplicit), Pattern: `\binappropriate`, Severity: string(core.SeverityMedium), Regex: true},
		{Category: string(core.CategoryDiscrimination), Pattern: `\bhate`, Severity: string(core.SeverityHigh), Regex: true},
		{Category: string(core.CategoryDiscrimination), Pattern: `\bdiscriminatory`, Severity: string(core.SeverityHigh), Regex: true},
		{Category: string(core.CategoryIllegal), Pattern: `\billegal`, Severity: string(core.SeverityHigh), Regex: true},
		{Category: string(core.CategoryIllegal), Pattern: `\bdrugs?\b`, Severity: string(core.SeverityHigh), Regex: true},
		{Category: string(core.CategoryToxicity), Pattern: `\bharm(?:ful\w*|ing|ed|s)?\b`, Severity: string(core.SeverityMedium), Regex: true},
		{Category: string(core.CategoryToxicity), Pattern: `\btoxic`, Severity: string(core.SeverityMedium), Regex: true},
		{Category: string(core.CategoryToxicity), Pattern: `\boffensiv`, Severity: string(core.SeverityMedium), Regex: true},
		{Category: string(core.CategoryToxicity), Pattern: `\babus`, Severity: string(core.SeverityMedium), Regex: true},
	}
}

// PatternSet 依設定順序比對
type PatternSet struct {
	rules []Rule
}

// NewPatternSet 編譯規則；rules 為空時使用 DefaultRules
func NewPatternSet(rules []config.FilterRule) (*PatternSet, error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	set := &PatternSet{rules: make([]Rule, 0, len(rules))}
	for i, raw := range rules {
		rule, err := compileRule(raw)
		if err != nil {
			return nil, fmt.Errorf("filter rule %d: %w", i, err)
		}
		set.rules = append(set.rules, rule)
	}
	return set, nil
}

func compileRule(raw config.FilterRule) (Rule, error) {
	pattern := strings.TrimSpace(raw.Pattern)
	if pattern == "" {
		return Rule{}, fmt.Errorf("empty pattern")
	}
	category := core.Category(strings.ToLower(strings.TrimSpace(raw.Category)))
	if !validCategory(category) {
		return Rule{}, fmt.Errorf("unknown category %q", raw.Category)
	}
	severity, ok := core.ParseSeverity(raw.Severity)
	if !ok {
		return Rule{}, fmt.Errorf("unknown severity %q", raw.Severity)
	}
	rule := Rule{Category: category, Severity: severity, Regex: raw.Regex}
	if raw.Regex {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return Rule{}, err
		}
		rule.Pattern = pattern
		rule.re = re
	} else {
		rule.Pattern = strings.ToLower(pattern)
	}
	return rule, nil
}

func validCategory(category core.Category) bool {
	for _, c := range core.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Match 第一條命中的規則決定 category；命中超過兩條時升為 HIGH
func (p *PatternSet) Match(text string) (Rule, bool) {
	lower := strings.ToLower(text)
	var first Rule
	hits := 0
	for _, rule := range p.rules {
		if !rule.matches(lower, text) {
			continue
		}
		if hits == 0 {
			first = rule
		}
		hits++
	}
	if hits == 0 {
		return Rule{}, false
	}
	if hits > 2 {
		first.Severity = core.SeverityHigh
	}
	return first, true
}

func (p *PatternSet) Len() int {
	return len(p.rules)
}
