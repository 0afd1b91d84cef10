// Command validate provides a small CLI that validates servers-list
// configuration files. It checks:
//   - File structure (any format viper understands: YAML, JSON, TOML)
//   - Origin scheme (http or https) and hostname presence
//   - A positive checkout timeout
//   - Per-server rules: unique names, single-letter game-kind codes,
//     ports within 1-65535
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pawnhall/gameclient/config"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateFile loads and validates a single servers-list configuration file.
func validateFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	cfg, err := config.Load(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Origin: %s://%s", cfg.Origin.Scheme, cfg.Origin.Hostname))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Checkout timeout: %s", cfg.CheckoutTimeout))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Servers: %d", len(cfg.Servers)))
	for _, srv := range cfg.Servers {
		result.Errors = append(result.Errors,
			fmt.Sprintf("✓ %s: %s on port %d", srv.Name, config.KindName(srv.Kind), srv.Port))
	}
	return result
}

func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		matches, err := filepath.Glob("configs/*")
		if err != nil || len(matches) == 0 {
			fmt.Println("Usage: validate <config-file>...")
			os.Exit(1)
		}
		files = matches
	}

	allValid := true
	for _, file := range files {
		result := validateFile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
