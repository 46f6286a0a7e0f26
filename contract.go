// Copyright 2025 The DBQ Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dbqcontract

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTitle   = "Unknown"
	DefaultOwner   = "Unknown"
	DefaultVersion = "0.0.0"

	// UnknownTable is used for quality groups whose label does not follow
	// the "checks for <table>" form.
	UnknownTable = "unknown"
)

var checksForTableRegex = regexp.MustCompile(`checks for (\w+)`)

// Contract is one data contract document: identity, ownership metadata,
// the models it describes and the quality rules attached to them. Only the
// quality section can make a contract malformed; other sections that do not
// decode are dropped with a diagnostic.
type Contract struct {
	ID            string               `yaml:"id"`
	Info          Info                 `yaml:"info"`
	Models        map[string]Model     `yaml:"models"`
	Quality       QualitySpecification `yaml:"quality"`
	ServiceLevels ServiceLevels        `yaml:"servicelevels"`
	Dependencies  []Dependency         `yaml:"dependencies"`

	diagnostics []string
}

type Info struct {
	Title       string         `yaml:"title"`
	Owner       string         `yaml:"owner"`
	Version     string         `yaml:"version"`
	Description string         `yaml:"description,omitempty"`
	Extra       map[string]any `yaml:",inline"`
}

type Model struct {
	Type        string           `yaml:"type,omitempty"`
	Description string           `yaml:"description,omitempty"`
	Fields      map[string]Field `yaml:"fields,omitempty"`
}

type Field struct {
	Type        string `yaml:"type,omitempty"`
	Description string `yaml:"description,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
	Unique      bool   `yaml:"unique,omitempty"`
	Primary     bool   `yaml:"primary,omitempty"`
}

type Dependency struct {
	Name  string         `yaml:"name"`
	Extra map[string]any `yaml:",inline"`
}

func (c *Contract) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("contract: expected a mapping at line %d", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := resolveAlias(node.Content[i+1])

		var err error
		switch key {
		case "quality":
			if err := value.Decode(&c.Quality); err != nil {
				return err
			}
			continue
		case "id":
			err = value.Decode(&c.ID)
		case "info":
			var info Info
			if err = value.Decode(&info); err == nil {
				c.Info = info
			}
		case "models":
			c.Models, err = decodeModels(value)
		case "servicelevels":
			var levels ServiceLevels
			if err = value.Decode(&levels); err == nil {
				c.ServiceLevels = levels
			}
		case "dependencies":
			c.Dependencies, err = decodeDependencies(value)
		default:
			continue
		}

		if err != nil {
			c.diagnostics = append(c.diagnostics,
				fmt.Sprintf("%s at line %d ignored: %v", key, value.Line, err))
		}
	}

	return nil
}

// decodeModels accepts models keyed by name, or a list of models carrying a
// name key.
func decodeModels(node *yaml.Node) (map[string]Model, error) {
	switch {
	case isNullNode(node):
		return nil, nil
	case node.Kind == yaml.MappingNode:
		models := make(map[string]Model, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			models[node.Content[i].Value] = decodeModel(resolveAlias(node.Content[i+1]))
		}
		return models, nil
	case node.Kind == yaml.SequenceNode:
		models := make(map[string]Model, len(node.Content))
		for _, item := range node.Content {
			item = resolveAlias(item)
			if name := mappingValue(item, "name"); name != "" {
				models[name] = decodeModel(item)
			}
		}
		return models, nil
	}
	return nil, fmt.Errorf("expected a mapping or a list")
}

func decodeModel(node *yaml.Node) Model {
	var model Model
	if node.Kind == yaml.ScalarNode {
		model.Type = node.Value
		return model
	}
	if node.Kind != yaml.MappingNode {
		return model
	}

	model.Type = mappingValue(node, "type")
	model.Description = mappingValue(node, "description")
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "fields" {
			model.Fields = decodeFields(resolveAlias(node.Content[i+1]))
		}
	}
	return model
}

// decodeFields accepts fields keyed by name, or a list of names or of
// mappings carrying a name key. Attributes that do not decode are left unset.
func decodeFields(node *yaml.Node) map[string]Field {
	fields := map[string]Field{}

	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			fields[node.Content[i].Value] = decodeField(resolveAlias(node.Content[i+1]))
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			item = resolveAlias(item)
			switch {
			case item.Kind == yaml.ScalarNode && item.Value != "":
				fields[item.Value] = Field{}
			case item.Kind == yaml.MappingNode:
				if name := mappingValue(item, "name"); name != "" {
					fields[name] = decodeField(item)
				}
			}
		}
	}

	return fields
}

func decodeField(node *yaml.Node) Field {
	var field Field
	if node.Kind == yaml.ScalarNode {
		field.Type = node.Value
		return field
	}
	if node.Kind == yaml.MappingNode {
		// a type error leaves the offending attribute at its zero value
		_ = node.Decode(&field)
	}
	return field
}

// decodeDependencies accepts a list of names or mappings, or a mapping keyed
// by dependency name.
func decodeDependencies(node *yaml.Node) ([]Dependency, error) {
	var dependencies []Dependency

	switch {
	case isNullNode(node):
		return nil, nil
	case node.Kind == yaml.SequenceNode:
		for _, item := range node.Content {
			item = resolveAlias(item)
			switch item.Kind {
			case yaml.ScalarNode:
				dependencies = append(dependencies, Dependency{Name: item.Value})
			case yaml.MappingNode:
				var dependency Dependency
				if err := item.Decode(&dependency); err != nil {
					return nil, err
				}
				dependencies = append(dependencies, dependency)
			}
		}
	case node.Kind == yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			dependency := Dependency{Name: node.Content[i].Value}
			if value := resolveAlias(node.Content[i+1]); value.Kind == yaml.MappingNode {
				_ = value.Decode(&dependency.Extra)
			}
			dependencies = append(dependencies, dependency)
		}
	default:
		return nil, fmt.Errorf("expected a list or a mapping")
	}

	return dependencies, nil
}

// mappingValue returns the scalar value of key in a mapping node.
func mappingValue(node *yaml.Node, key string) string {
	if node.Kind != yaml.MappingNode {
		return ""
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			if value := resolveAlias(node.Content[i+1]); value.Kind == yaml.ScalarNode {
				return value.Value
			}
		}
	}
	return ""
}

// ServiceLevels accepts both a list of entries and a single mapping keyed by
// service level name.
type ServiceLevels []map[string]any

func (s *ServiceLevels) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var entries []map[string]any
		if err := node.Decode(&entries); err != nil {
			return err
		}
		*s = entries
	case yaml.MappingNode:
		var entry map[string]any
		if err := node.Decode(&entry); err != nil {
			return err
		}
		*s = ServiceLevels{entry}
	case yaml.ScalarNode:
		if node.ShortTag() != "!!null" {
			return fmt.Errorf("servicelevels: expected a list or a mapping at line %d", node.Line)
		}
	}
	return nil
}

// QualitySpecification holds the quality groups of a contract in declaration
// order.
type QualitySpecification struct {
	Type        string
	Groups      []CheckGroup
	Diagnostics []string
}

// CheckGroup is one "checks for <table>" entry.
type CheckGroup struct {
	Label  string
	Table  string
	Checks []CheckDeclaration
}

// CheckDeclaration is a single expression with its config.
type CheckDeclaration struct {
	Expression string
	Config     CheckConfig
}

// FlattenedCheck is one independently executable rule.
type FlattenedCheck struct {
	Table      string      `json:"table"`
	Expression string      `json:"expression"`
	Config     CheckConfig `json:"-"`
	Severity   string      `json:"severity"`
}

// DisplayName is the configured check name, or the expression when unnamed.
func (c *FlattenedCheck) DisplayName() string {
	if name := c.Config.Name(); name != "" {
		return name
	}
	return c.Expression
}

func (q *QualitySpecification) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if isNullNode(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("quality: expected a mapping at line %d", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		value := resolveAlias(node.Content[i+1])

		switch key.Value {
		case "type":
			q.Type = value.Value
		case "specification":
			if err := q.decodeSpecification(value); err != nil {
				return err
			}
		}
	}

	return nil
}

func (q *QualitySpecification) decodeSpecification(node *yaml.Node) error {
	if isNullNode(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("quality.specification: expected a mapping at line %d", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		label := node.Content[i].Value
		value := resolveAlias(node.Content[i+1])

		group := CheckGroup{
			Label: label,
			Table: TableFromLabel(label),
		}

		switch {
		case isNullNode(value):
		case value.Kind == yaml.SequenceNode:
			for idx, item := range value.Content {
				item = resolveAlias(item)

				// a bare expression has no config
				if isStringNode(item) {
					group.Checks = append(group.Checks, CheckDeclaration{
						Expression: item.Value,
						Config:     NewCheckConfig(nil),
					})
					continue
				}

				if item.Kind != yaml.MappingNode {
					q.Diagnostics = append(q.Diagnostics,
						fmt.Sprintf("%q: check #%d at line %d is neither an expression nor a mapping, skipped", label, idx+1, item.Line))
					continue
				}

				declarations, err := decodeCheckDeclarations(item)
				if err != nil {
					return fmt.Errorf("%q: check #%d: %w", label, idx+1, err)
				}
				group.Checks = append(group.Checks, declarations...)
			}
		default:
			q.Diagnostics = append(q.Diagnostics,
				fmt.Sprintf("%q: expected a list of checks at line %d, skipped", label, value.Line))
		}

		q.Groups = append(q.Groups, group)
	}

	return nil
}

// decodeCheckDeclarations turns a {expression: config} mapping into
// declarations, one per key.
func decodeCheckDeclarations(node *yaml.Node) ([]CheckDeclaration, error) {
	var declarations []CheckDeclaration

	for i := 0; i+1 < len(node.Content); i += 2 {
		expression := node.Content[i].Value
		value := resolveAlias(node.Content[i+1])

		raw := map[string]any{}
		if value.Kind == yaml.MappingNode {
			if err := value.Decode(&raw); err != nil {
				return nil, fmt.Errorf("failed to decode config of %q: %w", expression, err)
			}
		}

		declarations = append(declarations, CheckDeclaration{
			Expression: expression,
			Config:     NewCheckConfig(raw),
		})
	}

	return declarations, nil
}

// TableFromLabel extracts the table name from a "checks for <table>" label.
func TableFromLabel(label string) string {
	if matches := checksForTableRegex.FindStringSubmatch(label); matches != nil {
		return matches[1]
	}
	return UnknownTable
}

// ParseContract decodes a contract document. An empty document or one that
// is not a mapping is rejected.
func ParseContract(data []byte) (*Contract, error) {
	var doc yaml.Node
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse contract: %w", err)
	}

	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty contract document")
	}

	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("contract document must be a mapping, got line %d", root.Line)
	}

	var contract Contract
	if err := root.Decode(&contract); err != nil {
		return nil, fmt.Errorf("failed to decode contract: %w", err)
	}

	return &contract, nil
}

func (c *Contract) Title() string {
	return valueOrDefault(c.Info.Title, DefaultTitle)
}

func (c *Contract) Owner() string {
	return valueOrDefault(c.Info.Owner, DefaultOwner)
}

func (c *Contract) Version() string {
	return valueOrDefault(c.Info.Version, DefaultVersion)
}

// FlattenChecks returns every check of the contract in declaration order.
func (c *Contract) FlattenChecks() []FlattenedCheck {
	var checks []FlattenedCheck
	for _, group := range c.Quality.Groups {
		for _, declaration := range group.Checks {
			checks = append(checks, FlattenedCheck{
				Table:      group.Table,
				Expression: declaration.Expression,
				Config:     declaration.Config,
				Severity:   declaration.Config.Severity(),
			})
		}
	}
	return checks
}

// Diagnostics lists sections and check declarations that were skipped while
// decoding.
func (c *Contract) Diagnostics() []string {
	diagnostics := append([]string(nil), c.diagnostics...)
	return append(diagnostics, c.Quality.Diagnostics...)
}

// Tables returns the model names declared by the contract, sorted.
func (c *Contract) Tables() []string {
	tables := make([]string, 0, len(c.Models))
	for name := range c.Models {
		tables = append(tables, name)
	}
	sort.Strings(tables)
	return tables
}

// DependencyNames returns the names of upstream dependencies.
func (c *Contract) DependencyNames() []string {
	var names []string
	for _, dep := range c.Dependencies {
		if dep.Name != "" {
			names = append(names, dep.Name)
		}
	}
	return names
}

func valueOrDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isStringNode(node *yaml.Node) bool {
	return node != nil && node.Kind == yaml.ScalarNode && node.ShortTag() == "!!str" && strings.TrimSpace(node.Value) != ""
}

func isNullNode(node *yaml.Node) bool {
	return node == nil || node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null")
}
