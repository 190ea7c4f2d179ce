package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"tbc-warlock-sim/internal/apl"
)

func main() {
	var rotationPath string
	flag.StringVar(&rotationPath, "rotation", "configs/rotations/default.yaml", "Path to rotation YAML")
	flag.Parse()

	rotationPath = filepath.Clean(rotationPath)
	rotation, err := apl.Load(rotationPath)
	if err != nil {
		log.Fatalf("rotation invalid: %v", err)
	}

	fmt.Printf("Rotation '%s' validated successfully: %d top-level actions (source: %s)\n",
		rotation.Name, len(rotation.Actions), rotationPath)
}
