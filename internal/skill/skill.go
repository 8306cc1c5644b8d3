package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Skill is a named markdown document an agent can invoke.
type Skill struct {
	Name     string
	Scope    string // "project" or "user"
	Metadata map[string]any
	Body     string
	Path     string
}

// Registry holds the merged project+user skill set, keyed by name.
type Registry struct {
	mu     sync.RWMutex
	skills map[string]*Skill
}

// NewRegistry loads skills from userDir and projectDir (either may be
// empty to skip that scope). A name present in both scopes resolves to
// the project copy.
func NewRegistry(userDir, projectDir string) (*Registry, error) {
	r := &Registry{skills: make(map[string]*Skill)}
	if userDir != "" {
		if err := r.loadDir(userDir, "user"); err != nil {
			return nil, err
		}
	}
	if projectDir != "" {
		if err := r.loadDir(projectDir, "project"); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) loadDir(dir, scope string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		sk, err := parseSkillFile(path)
		if err != nil {
			continue // skip unparseable files, same tolerance as command.Executor's file walk
		}
		sk.Name = strings.TrimSuffix(entry.Name(), ".md")
		sk.Scope = scope
		sk.Path = path

		r.mu.Lock()
		existing, ok := r.skills[sk.Name]
		if !ok || scope == "project" || existing.Scope != "project" {
			r.skills[sk.Name] = sk
		}
		r.mu.Unlock()
	}
	return nil
}

func parseSkillFile(path string) (*Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text := string(content)
	sk := &Skill{Metadata: map[string]any{}}

	if strings.HasPrefix(text, "---\n") {
		rest := text[4:]
		end := strings.Index(rest, "\n---")
		if end >= 0 {
			frontmatter := rest[:end]
			body := rest[end+len("\n---"):]
			if err := yaml.Unmarshal([]byte(frontmatter), &sk.Metadata); err != nil {
				return nil, fmt.Errorf("parse skill frontmatter %s: %w", path, err)
			}
			sk.Body = strings.TrimLeft(body, "\n")
			return sk, nil
		}
	}

	sk.Body = text
	return sk, nil
}

// Get returns the skill with the given name.
func (r *Registry) Get(name string) (*Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sk, ok := r.skills[name]
	return sk, ok
}

// List returns all registered skills.
func (r *Registry) List() []*Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Skill, 0, len(r.skills))
	for _, sk := range r.skills {
		out = append(out, sk)
	}
	return out
}

// Register adds or replaces a skill in memory (used by the engine
// façade's Skill management CRUD surface).
func (r *Registry) Register(sk *Skill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skills[sk.Name] = sk
}

// Unregister removes a skill by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.skills, name)
}
