// rulesexplorer builds the detection rule catalog and facet index from a
// directory of YAML rule files, and queries the built artifacts.
//
// Usage:
//
//	rulesexplorer build --rules ./rules --out ./public/data [--watch]
//	rulesexplorer search [term] --filter tactics=execution --filter os=windows
//	rulesexplorer facets [--field tactics]
//	rulesexplorer show <rule-id>
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errorColor.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
