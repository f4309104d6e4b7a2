// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"ai-mood-gateway/pkg/registry"
)

var registryPath string

func main() {
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	force := initCmd.Bool("force", false, "Overwrite an existing registry file")

	idUpdate := updateCmd.String("id", "", "Endpoint ID to update (e.g., chat)")
	field := updateCmd.String("field", "", "Field to update (description, path, method, category)")
	value := updateCmd.String("value", "", "New value for the field")

	for _, fs := range []*flag.FlagSet{initCmd, updateCmd, validateCmd} {
		fs.StringVar(&registryPath, "path", "configs/endpoint-registry.json", "Path to registry file")
	}

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		initCmd.Parse(os.Args[2:])
		if err := initRegistry(*force); err != nil {
			fmt.Printf("Error writing registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default registry to %s\n", registryPath)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateEndpoint(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating endpoint: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated endpoint %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func initRegistry(force bool) error {
	if _, err := os.Stat(registryPath); err == nil && !force {
		return fmt.Errorf("%s already exists, use -force to overwrite", registryPath)
	}
	reg := registry.DefaultRegistry()
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return reg.Save(registryPath)
}

func updateEndpoint(id, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	ep, ok := reg.Find(id)
	if !ok {
		return fmt.Errorf("endpoint with ID %s not found", id)
	}

	switch field {
	case "description":
		ep.Description = value
	case "path":
		ep.Path = value
	case "method":
		ep.Method = value
	case "category":
		ep.Category = value
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return reg.Save(registryPath)
}

func validateRegistry() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	fmt.Printf("Registry validation passed. Found %d endpoints.\n", len(reg.Endpoints))
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  init     Write the built-in endpoint registry to a file
  update   Update an existing endpoint's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater init -path configs/endpoint-registry.json
  registry-updater update -id chat -field description -value "Mood-aware chat"
  registry-updater validate -path configs/endpoint-registry.json

Use 'registry-updater <command> -h' for more information about a command.

`)
}
