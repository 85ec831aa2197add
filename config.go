package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

const configFileName = ".sconcho.toml"

type Config struct {
	SaveDirectory   string  `toml:"save_directory"`
	Rows            int     `toml:"rows"`
	Columns         int     `toml:"columns"`
	CellWidth       float64 `toml:"cell_width"`
	CellHeight      float64 `toml:"cell_height"`
	SymbolDirectory string  `toml:"symbol_directory"`
	PrintCommand    string  `toml:"print_command"`
	LogFile         string  `toml:"log_file"`
	Confirmations   bool    `toml:"confirmations"`
	AutoPruneLegend bool    `toml:"auto_prune_legend"`
	ExportScale     float64 `toml:"export_scale"`
}

func defaultConfig() *Config {
	return &Config{
		Rows:          defaultGridRows,
		Columns:       defaultGridColumns,
		CellWidth:     defaultCellWidth,
		CellHeight:    defaultCellHeight,
		PrintCommand:  "lpr",
		Confirmations: true,
		ExportScale:   1.0,
	}
}

// loadConfig reads ~/.sconcho.toml. A missing or broken file yields the
// defaults.
func loadConfig() *Config {
	path, err := homedir.Expand(filepath.Join("~", configFileName))
	if err != nil {
		return defaultConfig()
	}
	return loadConfigFile(path)
}

func loadConfigFile(path string) *Config {
	config := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config
	}
	if err := toml.Unmarshal(data, config); err != nil {
		log.Printf("ignoring config %s: %v", path, err)
		return defaultConfig()
	}
	config.normalize()
	return config
}

// normalize expands paths and replaces unusable values by defaults.
func (c *Config) normalize() {
	d := defaultConfig()
	if c.Rows < 1 {
		c.Rows = d.Rows
	}
	if c.Columns < 1 {
		c.Columns = d.Columns
	}
	if c.CellWidth <= 0 {
		c.CellWidth = d.CellWidth
	}
	if c.CellHeight <= 0 {
		c.CellHeight = d.CellHeight
	}
	if c.ExportScale <= 0 {
		c.ExportScale = d.ExportScale
	}
	c.SaveDirectory = expandPath(c.SaveDirectory)
	c.SymbolDirectory = expandPath(c.SymbolDirectory)
	c.LogFile = expandPath(c.LogFile)
}

func expandPath(path string) string {
	if path == "" {
		return path
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	if !filepath.IsAbs(expanded) {
		if abs, err := filepath.Abs(expanded); err == nil {
			expanded = abs
		}
	}
	return expanded
}

func (c *Config) GridSettings() GridSettings {
	return GridSettings{
		Columns:    c.Columns,
		Rows:       c.Rows,
		CellWidth:  c.CellWidth,
		CellHeight: c.CellHeight,
	}
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
