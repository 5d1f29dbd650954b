package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# IDB Pricer Configuration

[pricing]
# Risk-free interest rate (annualized, continuous)
risk_free_rate = 0.05
# Continuous dividend yield
dividend_yield = 0.0

[parsing]
# Leg bought by default when a risk reversal has no putover/callover
# modifier: "put" or "call"
risk_reversal_over = "call"

[data]
# Market data source: "sim" or "terminal"
mode = "sim"
# Terminal connection (ignored in sim mode)
host = "localhost"
port = 8194

[store]
# Order database path (defaults to the config directory)
path = ""

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
# Number of samples for payoff curves
payoff_steps = 40
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("config file not found, created template at %s", path)
}
