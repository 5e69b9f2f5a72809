// Package persona maps domain cluster ids to human-readable persona
// descriptions for the viewers.
package persona

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/n0roo/richness-kit/internal/richness"
	"gopkg.in/yaml.v3"
)

//go:embed personas.yaml
var defaultPersonas []byte

// Set holds persona text per domain and cluster id
type Set struct {
	Cafe       map[int]string `yaml:"cafe" json:"cafe"`
	Ping       map[int]string `yaml:"ping" json:"ping"`
	Restaurant map[int]string `yaml:"restaurant" json:"restaurant"`
}

// Persona is one resolved description
type Persona struct {
	Domain    richness.Domain `json:"domain"`
	ClusterID int             `json:"cluster_id"`
	Text      string          `json:"text"`
	Found     bool            `json:"found"`
}

// Default returns the built-in persona set
func Default() *Set {
	s, err := Parse(defaultPersonas)
	if err != nil {
		panic(fmt.Sprintf("내장 페르소나 파싱 실패: %v", err))
	}
	return s
}

// Parse decodes a personas YAML document
func Parse(data []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("페르소나 파싱 실패: %w", err)
	}
	return &s, nil
}

// Load reads a personas file. An empty path or a missing file yields the
// built-in set.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("페르소나 파일 읽기 실패: %w", err)
	}
	return Parse(data)
}

func (s *Set) table(d richness.Domain) map[int]string {
	switch d {
	case richness.DomainCafe:
		return s.Cafe
	case richness.DomainPing:
		return s.Ping
	default:
		return s.Restaurant
	}
}

// Describe returns the persona for a domain cluster, falling back to a
// fixed notice when none is defined.
func (s *Set) Describe(d richness.Domain, clusterID int) Persona {
	p := Persona{Domain: d, ClusterID: clusterID}
	if text, ok := s.table(d)[clusterID]; ok {
		p.Text = text
		p.Found = true
		return p
	}
	p.Text = Fallback(d)
	return p
}

// ForRecord resolves all three personas of a device in domain order
func (s *Set) ForRecord(rec richness.Record) []Persona {
	out := make([]Persona, 0, 3)
	for _, d := range richness.Domains() {
		out = append(out, s.Describe(d, rec.Cluster(d)))
	}
	return out
}

// Fallback is the text shown for clusters without a description
func Fallback(d richness.Domain) string {
	return fmt.Sprintf("No persona description available for this %s cluster.", d)
}
