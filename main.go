package main

import (
	"fmt"
	"os"
	"strings"

	"folio/service"
)

// CliVersion is the released version of the folio binary.
const CliVersion = "1.0.0"

// exit is a variable so tests can observe the exit code.
var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches os.Args and exits with the command's status.
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "version":
		fmt.Printf("folio version %s\n", CliVersion)
		exit(0)
	case "help", "-h", "--help":
		printHelp()
		exit(0)
	default:
		exit(service.HandleCommand(append([]string{cmd}, os.Args[2:]...)))
	}
}

func printHelp() {
	service.HandleCommand([]string{"help"})
}
