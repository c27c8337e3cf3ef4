package lsp

type Settings struct {
	LogLevel        string `mapstructure:"logLevel" json:"logLevel"`
	TargetFramework string `mapstructure:"targetFramework" json:"targetFramework"`
	// Projects lists project files to load eagerly after initialization.
	// Project discovery itself is the client's concern.
	Projects            []string                   `mapstructure:"projects" json:"projects"`
	BackgroundAnalyzers BackgroundAnalyzerSettings `mapstructure:"backgroundAnalyzers" json:"backgroundAnalyzers"`
}

// BackgroundAnalyzerSettings toggles the secondary analysis passes. Unset
// means enabled.
type BackgroundAnalyzerSettings struct {
	Disabled []string `mapstructure:"disabled" json:"disabled"`
}

func (s *BackgroundAnalyzerSettings) Enabled(name string) bool {
	for _, d := range s.Disabled {
		if d == name {
			return false
		}
	}
	return true
}
