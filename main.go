package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	config := loadConfig()
	closeLog := setUpLogging(config)
	defer closeLog()

	catalog, err := loadSymbolCatalog(config.SymbolDirectory)
	if catalog == nil {
		fmt.Fprintf(os.Stderr, "sconcho: %v\n", err)
		os.Exit(1)
	}
	if err != nil {
		log.Printf("symbols: %v", err)
	}

	m := initialModel(config, catalog)
	if config.SymbolDirectory != "" {
		changes := make(chan struct{}, 1)
		watcher, err := watchSymbolDirectory(config.SymbolDirectory, changes)
		if err != nil {
			log.Printf("not watching %s: %v", config.SymbolDirectory, err)
		} else {
			defer watcher.Close()
			m.symbolChanges = changes
		}
	}

	for i, path := range os.Args[1:] {
		m.openInNewBuffer = i > 0
		if err := m.openProject(path); err != nil {
			m.errorMessage = fmt.Sprintf("Error opening file: %s", err.Error())
		}
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		log.Print(err)
		fmt.Fprintf(os.Stderr, "sconcho: %v\n", err)
		os.Exit(1)
	}
}

// setUpLogging sends the log to SCONCHO_LOG or the configured log file.
// Without either, log output is dropped since the terminal belongs to the
// editor.
func setUpLogging(config *Config) func() {
	path := os.Getenv("SCONCHO_LOG")
	if path == "" {
		path = config.LogFile
	}
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}
	}
	f, err := tea.LogToFile(path, "sconcho")
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	return func() { f.Close() }
}

func initialModel(config *Config, catalog *SymbolCatalog) *model {
	m := &model{
		mode:              ModeNormal,
		config:            config,
		catalog:           catalog,
		view:              newGridView(),
		selectedFileIndex: -1,
	}
	m.addNewBuffer(m.newCanvas(), "")
	return m
}
