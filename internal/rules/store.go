// Package rules loads and saves the ordered categorization rule set.
package rules

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ledgerize-dev/ledgerize/internal/accounts"
	"github.com/ledgerize-dev/ledgerize/internal/journal"
	"github.com/ledgerize-dev/ledgerize/internal/model"
)

// Header is the required first row of a rules CSV file.
const Header = "MatchString,Description,Account"

const (
	numFields = 3
	colMatch  = 0
	colDesc   = 1
	colAcct   = 2
)

// Store reads and writes a rule set. Order is priority: earlier rules win.
type Store interface {
	Load() ([]model.Rule, error)
	Save(rules []model.Rule) error
}

// Open returns the store for path, chosen by file extension.
func Open(path string) Store {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return &YAMLStore{Path: path}
	default:
		return &CSVStore{Path: path}
	}
}

// CSVStore keeps rules in a CSV file with a MatchString,Description,Account header.
type CSVStore struct {
	Path string
}

// Load reads every rule from the file.
func (s *CSVStore) Load() ([]model.Rule, error) {
	f, err := openRules(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rules, err := ReadRules(f)
	if err != nil {
		return nil, fmt.Errorf("reading rules %s: %w", s.Path, err)
	}
	return rules, nil
}

// Save overwrites the file with rules, header first.
func (s *CSVStore) Save(rules []model.Rule) error {
	if err := validateAll(rules); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteRules(&buf, rules); err != nil {
		return err
	}
	return writeFile(s.Path, buf.Bytes())
}

// ReadRules parses a rules CSV. The header must match Header exactly.
func ReadRules(r io.Reader) ([]model.Rule, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rules CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("missing header %q", Header)
	}
	if got := strings.Join(records[0], ","); got != Header {
		return nil, fmt.Errorf("unexpected header %q, want %q", got, Header)
	}

	var rules []model.Rule
	for i, rec := range records[1:] {
		rule := model.Rule{
			Pattern:     rec[colMatch],
			Description: rec[colDesc],
			Account:     rec[colAcct],
		}
		if err := validateRule(rule); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// WriteRules writes the header and one row per rule.
func WriteRules(w io.Writer, rules []model.Rule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rule := range rules {
		row := make([]string, numFields)
		row[colMatch] = rule.Pattern
		row[colDesc] = rule.Description
		row[colAcct] = rule.Account
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// YAMLStore keeps rules in a YAML document under a top-level "rules" key.
type YAMLStore struct {
	Path string
}

type yamlRule struct {
	Match       string `yaml:"match"`
	Description string `yaml:"description"`
	Account     string `yaml:"account"`
}

type yamlFile struct {
	Rules []yamlRule `yaml:"rules"`
}

// Load reads every rule from the file.
func (s *YAMLStore) Load() ([]model.Rule, error) {
	f, err := openRules(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc yamlFile
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing rules %s: %w", s.Path, err)
	}

	var rules []model.Rule
	for i, yr := range doc.Rules {
		rule := model.Rule{Pattern: yr.Match, Description: yr.Description, Account: yr.Account}
		if err := validateRule(rule); err != nil {
			return nil, fmt.Errorf("rules %s: rule %d: %w", s.Path, i+1, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Save overwrites the file with rules.
func (s *YAMLStore) Save(rules []model.Rule) error {
	if err := validateAll(rules); err != nil {
		return err
	}
	doc := yamlFile{Rules: make([]yamlRule, len(rules))}
	for i, r := range rules {
		doc.Rules[i] = yamlRule{Match: r.Pattern, Description: r.Description, Account: r.Account}
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	return writeFile(s.Path, data)
}

func validateRule(r model.Rule) error {
	if r.Pattern == "" {
		return errors.New("empty MatchString")
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("rule %q: empty Description", r.Pattern)
	}
	if strings.ContainsAny(r.Pattern+r.Description, "\r\n") {
		return fmt.Errorf("rule %q: line break in MatchString or Description", r.Pattern)
	}
	if err := accounts.Validate(r.Account); err != nil {
		return fmt.Errorf("rule %q: %w", r.Pattern, err)
	}
	return nil
}

func openRules(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &model.MissingFileError{Path: path, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("opening rules: %w", err)
	}
	return f, nil
}

func validateAll(rules []model.Rule) error {
	for i, r := range rules {
		if err := validateRule(r); err != nil {
			return fmt.Errorf("rule %d: %w", i+1, err)
		}
	}
	return nil
}

// writeFile replaces path atomically so a reader never sees half a rule set.
func writeFile(path string, data []byte) error {
	if err := journal.WriteFile(path, data, false); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}
