// Command schemagen writes a <model>_schema_gen.go file for every struct
// with db tags in a package directory. It is run through go:generate.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/arllen133/userforms/cmd/schemagen/generator"
)

func main() {
	dir := flag.String("dir", ".", "directory containing model files")
	outDir := flag.String("output", "", "directory to save generated files (default: -dir)")
	module := flag.String("module", "github.com/arllen133/userforms", "module path providing clause, field and store")
	flag.Parse()

	if *outDir == "" {
		*outDir = *dir
	}

	models, err := generator.ParseModels(*dir)
	if err != nil {
		log.Fatalf("failed to parse models: %v", err)
	}
	if len(models) == 0 {
		log.Fatalf("no models with db tags in %s", *dir)
	}

	for _, m := range models {
		path, err := generator.GenerateFile(m, *module, *outDir)
		if err != nil {
			log.Fatalf("failed to generate file for %s: %v", m.ModelName, err)
		}
		fmt.Printf("Generated %s\n", path)
	}
}
