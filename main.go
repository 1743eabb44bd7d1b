package main

import (
	"github.com/NeurArk/ai-contract-guardian/cmd"
)

func main() {
	cmd.Execute()
}
