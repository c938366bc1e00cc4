package transform

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

type ruleData struct {
	ShortStringMaxLen int      `yaml:"short_string_max_len"`
	LeadingArticles   []string `yaml:"leading_articles"`
	BooleanCues       []string `yaml:"boolean_cues"`
	NumericKeys       []string `yaml:"numeric_keys"`
	UnitTokens        []string `yaml:"unit_tokens"`
}

var rules = mustLoadRuleData()

func mustLoadRuleData() ruleData {
	var rd ruleData
	if err := yaml.Unmarshal(rulesYAML, &rd); err != nil {
		panic(fmt.Sprintf("transform: embedded rules.yaml is invalid: %v", err))
	}
	if rd.ShortStringMaxLen <= 0 {
		rd.ShortStringMaxLen = 120
	}
	return rd
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}

var (
	articleSet    = wordSet(rules.LeadingArticles)
	booleanCueSet = wordSet(rules.BooleanCues)
	numericKeySet = wordSet(rules.NumericKeys)
	unitTokenSet  = wordSet(rules.UnitTokens)
)
