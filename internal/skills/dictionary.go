// Package skills turns free text into lists of canonical skill names. A fixed dictionary of
// terms and synonyms backs a substring extractor; an LLM-backed extractor is tried first and
// the Resolver decides between the two and merges in manually supplied skills.
package skills

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Synonym maps a variant phrase to one canonical term.
type Synonym struct {
	Variant   string `json:"variant"`
	Canonical string `json:"canonical"`
}

// Dictionary is an immutable set of canonical skill terms plus variant mappings. Build it
// once at startup and pass it to the extractors that need it.
type Dictionary struct {
	terms    []string
	synonyms []Synonym
}

// NewDictionary validates terms and synonyms and returns a Dictionary. Variants are stored
// lowercased. Terms must be unique ignoring case; every synonym must target a term.
func NewDictionary(terms []string, synonyms []Synonym) (*Dictionary, error) {
	d := &Dictionary{
		terms:    make([]string, 0, len(terms)),
		synonyms: make([]Synonym, 0, len(synonyms)),
	}

	canonical := make(map[string]string, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			return nil, fmt.Errorf("dictionary: blank term")
		}
		key := strings.ToLower(term)
		if prev, ok := canonical[key]; ok {
			return nil, fmt.Errorf("dictionary: duplicate term %q (already have %q)", term, prev)
		}
		canonical[key] = term
		d.terms = append(d.terms, term)
	}

	variants := make(map[string]bool, len(synonyms))
	for _, syn := range synonyms {
		variant := strings.ToLower(strings.TrimSpace(syn.Variant))
		if variant == "" {
			return nil, fmt.Errorf("dictionary: blank variant for %q", syn.Canonical)
		}
		if variants[variant] {
			return nil, fmt.Errorf("dictionary: duplicate variant %q", variant)
		}
		target, ok := canonical[strings.ToLower(strings.TrimSpace(syn.Canonical))]
		if !ok {
			return nil, fmt.Errorf("dictionary: variant %q maps to unknown term %q", variant, syn.Canonical)
		}
		variants[variant] = true
		d.synonyms = append(d.synonyms, Synonym{Variant: variant, Canonical: target})
	}

	return d, nil
}

// Terms returns a copy of the canonical terms in dictionary order.
func (d *Dictionary) Terms() []string {
	return append([]string(nil), d.terms...)
}

// Synonyms returns a copy of the variant mappings in dictionary order.
func (d *Dictionary) Synonyms() []Synonym {
	return append([]Synonym(nil), d.synonyms...)
}

type dictionaryFile struct {
	Terms    []string  `json:"terms"`
	Synonyms []Synonym `json:"synonyms"`
}

// LoadDictionary reads a dictionary from a JSON file of the form
// {"terms": [...], "synonyms": [{"variant": "...", "canonical": "..."}]}.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", path, err)
	}

	var file dictionaryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary %s: %w", path, err)
	}
	return NewDictionary(file.Terms, file.Synonyms)
}

// DefaultDictionary returns the built-in technology dictionary.
func DefaultDictionary() *Dictionary {
	d, err := NewDictionary(defaultTerms, defaultSynonyms)
	if err != nil {
		panic(fmt.Sprintf("built-in dictionary is invalid: %v", err))
	}
	return d
}

var defaultTerms = []string{
	"JavaScript", "TypeScript", "Python", "Java", "Go", "Rust", "Ruby", "PHP", "C++", "C#",
	"Kotlin", "Swift", "Scala", "React", "Angular", "Vue", "Next.js", "Node.js", "Express",
	"Django", "Flask", "Spring", "Rails", ".NET", "GraphQL", "REST", "HTML", "CSS", "Tailwind",
	"SQL", "PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch", "Kafka", "RabbitMQ",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Terraform", "Ansible", "Jenkins", "Git",
	"Linux", "CI/CD", "Microservices", "Machine Learning", "TensorFlow", "PyTorch", "Pandas",
	"Figma", "Agile", "Scrum", "Jest", "Cypress", "Redux",
}

var defaultSynonyms = []Synonym{
	{Variant: "reactjs", Canonical: "React"},
	{Variant: "react.js", Canonical: "React"},
	{Variant: "node", Canonical: "Node.js"},
	{Variant: "nodejs", Canonical: "Node.js"},
	{Variant: "express.js", Canonical: "Express"},
	{Variant: "vue.js", Canonical: "Vue"},
	{Variant: "vuejs", Canonical: "Vue"},
	{Variant: "angularjs", Canonical: "Angular"},
	{Variant: "nextjs", Canonical: "Next.js"},
	{Variant: "golang", Canonical: "Go"},
	{Variant: "ecmascript", Canonical: "JavaScript"},
	{Variant: "postgres", Canonical: "PostgreSQL"},
	{Variant: "mongo", Canonical: "MongoDB"},
	{Variant: "amazon web services", Canonical: "AWS"},
	{Variant: "ec2", Canonical: "AWS"},
	{Variant: "s3", Canonical: "AWS"},
	{Variant: "lambda", Canonical: "AWS"},
	{Variant: "google cloud", Canonical: "GCP"},
	{Variant: "k8s", Canonical: "Kubernetes"},
	{Variant: "spring boot", Canonical: "Spring"},
	{Variant: "ruby on rails", Canonical: "Rails"},
	{Variant: "dotnet", Canonical: ".NET"},
	{Variant: "asp.net", Canonical: ".NET"},
	{Variant: "restful", Canonical: "REST"},
	{Variant: "continuous integration", Canonical: "CI/CD"},
	{Variant: "github actions", Canonical: "CI/CD"},
	{Variant: "tailwindcss", Canonical: "Tailwind"},
}
