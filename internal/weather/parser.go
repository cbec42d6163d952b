// Package weather parses free-text station messages into typed measurements
// and aggregates them per station.
package weather

import (
	"regexp"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/agrisense/survey-cli/internal/config"
	"github.com/agrisense/survey-cli/internal/table"
)

// Kind is one measurement vocabulary entry. The same vocabulary labels the
// field-survey columns, so the comparator can pair samples by name.
type Kind string

const (
	KindTemperature Kind = "Temperature"
	KindRainfall    Kind = "Rainfall"
	KindPollution   Kind = "Pollution_level"
)

// CanonicalKinds fixes the reporting order of the comparison stage.
var CanonicalKinds = []Kind{KindTemperature, KindRainfall, KindPollution}

// Column names of the weather station table.
const (
	ColStation     = "Weather_station_ID"
	ColMessage     = "Message"
	ColMeasurement = "Measurement"
	ColValue       = "Value"
)

// Rule is one compiled extraction rule. Rules are tried in declaration
// order; the first rule whose pattern matches anywhere in the message wins,
// and the first non-empty capture group supplies the value.
type Rule struct {
	Kind Kind
	re   *regexp.Regexp
}

// CompileRules compiles the configured patterns, preserving order. Every
// pattern must carry at least one capture group, otherwise a match could
// never yield a value.
func CompileRules(rules []config.RuleConfig) ([]Rule, error) {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "weather: compile pattern for %s", r.Kind)
		}
		if re.NumSubexp() < 1 {
			return nil, eris.Errorf("weather: pattern for %s has no capture group", r.Kind)
		}
		out = append(out, Rule{Kind: Kind(r.Kind), re: re})
	}
	return out, nil
}

// Parser extracts measurements from station messages.
type Parser struct {
	rules []Rule
	log   *zap.Logger
}

// NewParser creates a parser over an ordered rule set.
func NewParser(rules []Rule) *Parser {
	return &Parser{rules: rules, log: zap.L().Named("weather")}
}

// Extract returns the measurement parsed from one message, or ok=false when
// no rule matches. Ties between rules are broken by rule order, never by
// match position or length.
func (p *Parser) Extract(message string) (Kind, float64, bool) {
	for _, rule := range p.rules {
		m := rule.re.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		for _, group := range m[1:] {
			if group == "" {
				continue
			}
			v, err := strconv.ParseFloat(group, 64)
			if err != nil {
				continue
			}
			p.log.Debug("measurement extracted", zap.String("kind", string(rule.Kind)))
			return rule.Kind, v, true
		}
		// Matched with only empty groups: the pattern violates the rule
		// contract. Treat the message as unmatched rather than guessing.
		p.log.Warn("pattern matched but captured no value",
			zap.String("kind", string(rule.Kind)),
		)
	}
	p.log.Debug("no measurement match found")
	return "", 0, false
}

// ProcessMessages annotates every row with the parsed Measurement and Value
// columns. Row order and count are preserved exactly; unmatched rows keep
// nil in both columns and stay visible for diagnostics.
func (p *Parser) ProcessMessages(t *table.Table) (*table.Table, error) {
	if !t.HasColumn(ColMessage) {
		return nil, eris.Errorf("weather: missing column %q", ColMessage)
	}

	out := t.Clone()
	out.Columns = append(out.Columns, ColMeasurement, ColValue)
	matched := 0
	for _, row := range out.Rows {
		msg, _ := row[ColMessage].(string)
		kind, value, ok := p.Extract(msg)
		if ok {
			row[ColMeasurement] = string(kind)
			row[ColValue] = value
			matched++
		} else {
			row[ColMeasurement] = nil
			row[ColValue] = nil
		}
	}

	p.log.Info("messages processed",
		zap.Int("rows", out.Len()),
		zap.Int("matched", matched),
	)
	return out, nil
}
