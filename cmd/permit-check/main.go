package main

import (
	"fmt"
	"os"

	"github.com/oarkflow/permit"
	"github.com/oarkflow/permit/logger"
	"github.com/oarkflow/permit/persist"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "check":
		handleCheck()
	case "validate":
		handleValidate()
	case "roles":
		handleRoles()
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("permit-check - Policy evaluation tool for permit")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  permit-check check <model> <policy> <rvals...>  - Evaluate a request")
	fmt.Println("  permit-check validate <model>                   - Validate a model file")
	fmt.Println("  permit-check roles <model> <policy> <user>      - List roles for a user")
	fmt.Println()
	fmt.Println("Model formats: .yaml, .yml, .json; policy is one rule per line")
}

func buildEngine(modelFile, policyFile string) (*permit.Engine, error) {
	m, err := permit.LoadModelFromFile(modelFile)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	opts := []permit.EngineOption{permit.WithAdapter(persist.NewFileAdapter(policyFile))}
	if os.Getenv("PERMIT_DEBUG") != "" {
		opts = append(opts, permit.WithLogger(logger.NewPhusluLogger()))
	}
	e, err := permit.NewEngine(m, opts...)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	return e, nil
}

func handleCheck() {
	if len(os.Args) < 5 {
		fmt.Println("Usage: permit-check check <model> <policy> <rvals...>")
		os.Exit(1)
	}
	e, err := buildEngine(os.Args[2], os.Args[3])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	rvals := make([]any, 0, len(os.Args)-4)
	for _, v := range os.Args[4:] {
		rvals = append(rvals, v)
	}
	allowed, err := e.Enforce(rvals...)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if allowed {
		fmt.Println("allow")
	} else {
		fmt.Println("deny")
		os.Exit(2)
	}
}

func handleValidate() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: permit-check validate <model>")
		os.Exit(1)
	}
	m, err := permit.LoadModelFromFile(os.Args[2])
	if err != nil {
		fmt.Printf("Invalid model: %v\n", err)
		os.Exit(1)
	}
	if _, err := permit.NewEngine(m); err != nil {
		fmt.Printf("Invalid model: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Model is valid")
}

func handleRoles() {
	if len(os.Args) < 5 {
		fmt.Println("Usage: permit-check roles <model> <policy> <user>")
		os.Exit(1)
	}
	e, err := buildEngine(os.Args[2], os.Args[3])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	roles, err := e.GetRolesForUser(os.Args[4])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	for _, r := range roles {
		fmt.Println(r)
	}
}
