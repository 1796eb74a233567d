package config_test

import (
	"fmt"

	"github.com/lystzs/family-asset-manager/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Dashboard running on port: %s\n", cfg.Port)
	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Backend API: %s\n", cfg.Backend.PublicBaseURL)
	fmt.Printf("Status poll interval: %v\n", cfg.Dashboard.PollInterval)
}
