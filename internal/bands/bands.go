// =============================================================================
// Business Search - Band Definitions
// =============================================================================
//
// Bands are named buckets for coded attributes (employment size, turnover,
// legal status, trading status). They feed the dropdown filters of the search
// form and convert codes to display values in the results table.
//
// ORDERING:
//   Dropdowns list bands in definition order, so a band table is an explicit
//   ordered list of key/value pairs rather than a Go map.
//
// =============================================================================

package bands

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/business-search/internal/types"
)

// =============================================================================
// ORDERED MAPPING
// =============================================================================

// Pair is one band code and its display value.
type Pair struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Mapping is an ordered band table.
type Mapping []Pair

// Lookup returns the display value for a band code.
func (m Mapping) Lookup(key string) (string, bool) {
	for _, p := range m {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Keys returns the band codes in order.
func (m Mapping) Keys() []string {
	keys := make([]string, len(m))
	for i, p := range m {
		keys[i] = p.Key
	}
	return keys
}

// UnmarshalYAML decodes a YAML mapping node keeping document order.
//
// EXAMPLE:
//   employment:
//     A: "0"
//     B: "1"
//     C: "2-4"
func (m *Mapping) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: band table must be a mapping", node.Line)
	}

	out := make(Mapping, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if valueNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: band %q must have a scalar value", valueNode.Line, keyNode.Value)
		}
		out = append(out, Pair{Key: keyNode.Value, Value: valueNode.Value})
	}

	*m = out
	return nil
}

// =============================================================================
// OPTION LIST BUILDER
// =============================================================================

// FormSelectJSON converts a band table into dropdown options labelled
// "<key> [<value>]", preserving order.
func FormSelectJSON(m Mapping) []types.Option {
	options := make([]types.Option, 0, len(m))
	for _, p := range m {
		options = append(options, types.Option{
			Label: fmt.Sprintf("%s [%s]", p.Key, p.Value),
			Value: p.Key,
		})
	}
	return options
}

// =============================================================================
// BUILT-IN TABLES
// =============================================================================

// Names of the built-in band tables.
const (
	Employment    = "employment"
	LegalStatus   = "legal_status"
	Turnover      = "turnover"
	TradingStatus = "trading_status"
)

var employmentBands = Mapping{
	{"A", "0"},
	{"B", "1"},
	{"C", "2-4"},
	{"D", "5-9"},
	{"E", "10-19"},
	{"F", "20-24"},
	{"G", "25-49"},
	{"H", "50-74"},
	{"I", "75-99"},
	{"J", "100-149"},
	{"K", "150-199"},
	{"L", "200-249"},
	{"M", "250-299"},
	{"N", "300-499"},
	{"O", "500+"},
}

var legalStatusBands = Mapping{
	{"1", "Company"},
	{"2", "Sole Proprietor"},
	{"3", "Partnership"},
	{"4", "Public Corporation"},
	{"5", "Non-Profit Body"},
	{"6", "Local Authority"},
	{"7", "Central Government"},
	{"8", "Charity"},
}

var turnoverBands = Mapping{
	{"A", "0-99"},
	{"B", "100-249"},
	{"C", "250-499"},
	{"D", "500-2,499"},
	{"E", "2,500-99,999"},
	{"F", "100,000+"},
}

var tradingStatusBands = Mapping{
	{"A", "Active"},
	{"C", "Closed"},
	{"D", "Dormant"},
	{"I", "Insolvent"},
}

// Registry holds the band tables known to the application.
type Registry struct {
	tables map[string]Mapping
}

// NewRegistry returns the built-in tables with overrides applied. An override
// with the same name replaces a built-in table.
func NewRegistry(overrides map[string]Mapping) *Registry {
	r := &Registry{tables: map[string]Mapping{
		Employment:    employmentBands,
		LegalStatus:   legalStatusBands,
		Turnover:      turnoverBands,
		TradingStatus: tradingStatusBands,
	}}
	for name, m := range overrides {
		r.tables[name] = m
	}
	return r
}

// Get returns the named table.
func (r *Registry) Get(name string) (Mapping, bool) {
	m, ok := r.tables[name]
	return m, ok
}

// Names returns the table names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Options returns the dropdown options of the named table.
func (r *Registry) Options(name string) ([]types.Option, error) {
	m, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown band table %q", name)
	}
	return FormSelectJSON(m), nil
}

// ConvertBands replaces band codes in a record with their display values, the
// way the results table shows them. Attributes without a matching table or
// code are left unchanged. The input record is not modified.
func (r *Registry) ConvertBands(rec types.Record) types.Record {
	out := rec.Clone()
	for attr, table := range recordBandAttributes {
		code, ok := out[attr].(string)
		if !ok {
			continue
		}
		m, ok := r.Get(table)
		if !ok {
			continue
		}
		if label, ok := m.Lookup(code); ok {
			out[attr] = label
		}
	}
	return out
}

// recordBandAttributes maps record attributes to the table that decodes them.
var recordBandAttributes = map[string]string{
	"employmentBands": Employment,
	"legalStatus":     LegalStatus,
	"turnover":        Turnover,
	"tradingStatus":   TradingStatus,
}
