// superact-parse reads the raw step-state artifact, the id-to-index
// correlation map, and the persisted step list, and writes the final
// caller-ordered results JSON array to stdout. It is invoked by the
// superact run pipeline as a subprocess so a parse crash can never take
// the run down with it.
package main

import (
	"fmt"
	"os"

	"github.com/superactdev/superact/pkg/results"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintf(os.Stderr, "usage: %s <results.json> <id_index_map.json> <merged_steps.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	out, err := results.Run(os.Args[1], os.Args[2], os.Args[3])
	if err != nil {
		fmt.Fprintf(os.Stderr, "superact-parse: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}
