// Command petgroom runs, simulates and replays Pet Grooming matches.
package main

import (
	"os"

	"github.com/MRamiBalles/PetGrooming/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
