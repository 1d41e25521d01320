package sentiment

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LexiconFile is one on-disk vocabulary file. Files are loaded at startup,
// fingerprinted, and merged into a single lexicon; no hot reload.
type LexiconFile struct {
	Name        string
	Fingerprint string // SHA-256 of the raw YAML; staleness detection
	Terms       Lexicon
}

// rawLexicon is the on-disk YAML shape. Weights default to +1/-1 for the
// plain word lists; the weights map overrides individual terms.
type rawLexicon struct {
	Name     string             `yaml:"name"`
	Positive []string           `yaml:"positive"`
	Negative []string           `yaml:"negative"`
	Weights  map[string]float64 `yaml:"weights"`
}

// FileSystemLexiconRepository loads sentiment vocabularies from *.yaml
// files in a directory. Each file contains exactly one named lexicon.
type FileSystemLexiconRepository struct {
	dir   string
	files map[string]LexiconFile // keyed by Name
}

// NewFileSystemLexiconRepository eagerly loads all lexicon files from dir.
// A missing directory is valid (zero files configured); a malformed file
// is an error.
func NewFileSystemLexiconRepository(dir string) (*FileSystemLexiconRepository, error) {
	repo := &FileSystemLexiconRepository{
		dir:   dir,
		files: make(map[string]LexiconFile),
	}
	if err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *FileSystemLexiconRepository) load() error {
	info, err := os.Stat(r.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lexicon dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("lexicon path %q is not a directory", r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("reading lexicon dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		path := filepath.Join(r.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading lexicon file %s: %w", path, err)
		}

		var raw rawLexicon
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parsing lexicon file %s: %w", path, err)
		}
		if raw.Name == "" {
			continue // skip empty / comment-only files
		}

		terms, err := buildTerms(raw)
		if err != nil {
			return fmt.Errorf("lexicon %q: %w", raw.Name, err)
		}
		if len(terms) == 0 {
			return fmt.Errorf("lexicon %q: no terms defined", raw.Name)
		}

		if _, exists := r.files[raw.Name]; exists {
			return fmt.Errorf("lexicon %q: duplicate lexicon name (check multiple YAML files)", raw.Name)
		}

		r.files[raw.Name] = LexiconFile{
			Name:        raw.Name,
			Fingerprint: fmt.Sprintf("%x", sha256.Sum256(data)),
			Terms:       terms,
		}
	}
	return nil
}

func buildTerms(raw rawLexicon) (Lexicon, error) {
	terms := make(Lexicon, len(raw.Positive)+len(raw.Negative)+len(raw.Weights))
	for _, w := range raw.Positive {
		terms[strings.ToLower(strings.TrimSpace(w))] = 1
	}
	for _, w := range raw.Negative {
		term := strings.ToLower(strings.TrimSpace(w))
		if _, dup := terms[term]; dup {
			return nil, fmt.Errorf("term %q listed as both positive and negative", term)
		}
		terms[term] = -1
	}
	for term, weight := range raw.Weights {
		terms[strings.ToLower(strings.TrimSpace(term))] = weight
	}
	delete(terms, "")
	return terms, nil
}

// Lexicon merges all loaded files into one vocabulary, falling back to
// the built-in lexicon when no files were found.
func (r *FileSystemLexiconRepository) Lexicon() Lexicon {
	if len(r.files) == 0 {
		return DefaultLexicon()
	}
	merged := make(Lexicon)
	// Deterministic merge order: sorted by name.
	for _, name := range r.names() {
		merged.Merge(r.files[name].Terms)
	}
	return merged
}

// Files returns all loaded lexicon files.
func (r *FileSystemLexiconRepository) Files() []LexiconFile {
	out := make([]LexiconFile, 0, len(r.files))
	for _, name := range r.names() {
		out = append(out, r.files[name])
	}
	return out
}

func (r *FileSystemLexiconRepository) names() []string {
	names := make([]string, 0, len(r.files))
	for name := range r.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
