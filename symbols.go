package main

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

//go:embed symbols.yaml
var defaultSymbolData []byte

// Symbol describes a knitting symbol. The asset at SVGPath is never read
// here; Glyph is what the terminal shows in its place.
type Symbol struct {
	Category    string `yaml:"category"`
	Name        string `yaml:"name"`
	Width       int    `yaml:"width"`
	Glyph       string `yaml:"glyph"`
	Description string `yaml:"description"`
	SVGPath     string `yaml:"svg"`
	Background  string `yaml:"background,omitempty"`
}

// SymbolKey identifies a symbol by category and name.
type SymbolKey struct {
	Category string
	Name     string
}

func (s *Symbol) Key() SymbolKey {
	return SymbolKey{Category: s.Category, Name: s.Name}
}

func (k SymbolKey) String() string {
	return k.Category + "/" + k.Name
}

// SymbolCatalog holds the symbols available for painting, in the order
// they were loaded.
type SymbolCatalog struct {
	symbols []*Symbol
	byKey   map[SymbolKey]*Symbol
}

func NewSymbolCatalog() *SymbolCatalog {
	return &SymbolCatalog{byKey: make(map[SymbolKey]*Symbol)}
}

// loadSymbolCatalog returns the built-in catalog merged with every YAML
// file found in dir. Files that fail to parse are logged and skipped.
func loadSymbolCatalog(dir string) (*SymbolCatalog, error) {
	catalog := NewSymbolCatalog()
	if err := catalog.AddYAML(defaultSymbolData); err != nil {
		return nil, fmt.Errorf("built-in symbols: %w", err)
	}
	if dir == "" {
		return catalog, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return catalog, nil
		}
		return catalog, fmt.Errorf("reading symbol directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !entry.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Printf("skipping symbol file %s: %v", name, err)
			continue
		}
		if err := catalog.AddYAML(data); err != nil {
			log.Printf("skipping symbol file %s: %v", name, err)
		}
	}
	return catalog, nil
}

// AddYAML adds every symbol in a YAML list. A symbol with a key that is
// already present replaces the old one in place.
func (c *SymbolCatalog) AddYAML(data []byte) error {
	var symbols []*Symbol
	if err := yaml.Unmarshal(data, &symbols); err != nil {
		return err
	}
	for _, s := range symbols {
		if s.Name == "" || s.Category == "" {
			return fmt.Errorf("symbol without name or category")
		}
		if s.Width < 1 {
			s.Width = 1
		}
		c.Add(s)
	}
	return nil
}

func (c *SymbolCatalog) Add(s *Symbol) {
	key := s.Key()
	if old, ok := c.byKey[key]; ok {
		*old = *s
		return
	}
	c.byKey[key] = s
	c.symbols = append(c.symbols, s)
}

// Merge adds the symbols of other and returns how many were taken over.
// A symbol whose width changed is skipped since placed items depend on it.
func (c *SymbolCatalog) Merge(other *SymbolCatalog) int {
	merged := 0
	for _, s := range other.Symbols() {
		if old := c.Lookup(s.Category, s.Name); old != nil && old.Width != s.Width {
			log.Printf("symbol %s changed width from %d to %d, keeping the old one", s.Key(), old.Width, s.Width)
			continue
		}
		copied := *s
		c.Add(&copied)
		merged++
	}
	return merged
}

// Lookup returns the symbol with the given category and name, or nil.
func (c *SymbolCatalog) Lookup(category, name string) *Symbol {
	return c.byKey[SymbolKey{Category: category, Name: name}]
}

func (c *SymbolCatalog) Symbols() []*Symbol {
	return c.symbols
}

func (c *SymbolCatalog) Len() int {
	return len(c.symbols)
}

// resolve finds a symbol for a persisted record. Unknown symbols turn
// into placeholders with the stored width so the pattern survives.
func (c *SymbolCatalog) resolve(category, name string, width int) *Symbol {
	if category == "" && name == "" {
		return nil
	}
	if s := c.Lookup(category, name); s != nil {
		return s
	}
	log.Printf("unknown symbol %s/%s, using placeholder", category, name)
	if width < 1 {
		width = 1
	}
	s := &Symbol{
		Category:    category,
		Name:        name,
		Width:       width,
		Glyph:       "?",
		Description: name,
	}
	c.Add(s)
	return s
}

// watchSymbolDirectory reports on changes whenever a YAML file in dir is
// written, created, removed or renamed. The returned watcher must be
// closed by the caller.
func watchSymbolDirectory(dir string, changes chan<- struct{}) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				ext := strings.ToLower(filepath.Ext(event.Name))
				if ext != ".yaml" && ext != ".yml" {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					select {
					case changes <- struct{}{}:
					default:
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("symbol directory watch: %v", err)
			}
		}
	}()
	return watcher, nil
}
