// Command tl is the scriptable TruthLens CLI.
//
// Usage:
//
//	tl                          Show help
//	tl analyze <text>           Analyze text (or --url / --image)
//	tl history                  List past analyses with stats
//	tl show <id>                Show a past analysis
//	tl login | signup | logout  Manage the saved session
//	tl whoami                   Show the signed-in user
//	tl health                   Check the analysis service
//	tl clear-cache              Delete locally cached analyses
//	tl events                   Analysis event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `tl - TruthLens content credibility CLI

Usage:
  tl <command> [flags]

Commands:
  analyze      Analyze text, a URL or an image URL
  history      List past analyses (service and local cache)
  show         Show a past analysis by id
  login        Sign in and save the session
  signup       Create an account and save the session
  logout       Forget the saved session
  whoami       Show the signed-in user
  health       Check the analysis service
  clear-cache  Delete locally cached analyses
  events       Analysis event log viewer

Environment:
  TRUTHLENS_API_URL  Analysis service base URL (default: http://localhost:5000)
  TRUTHLENS_TIMEOUT  Request timeout in seconds (default: 60)
  TRUTHLENS_RPM      Client-side request limit per minute (default: 30)
  TRUTHLENS_TOKEN    Bearer token, overrides the saved session

Run 'tl <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "analyze":
		runAnalyze()
	case "history":
		runHistory()
	case "show":
		runShow()
	case "login":
		runLogin()
	case "signup":
		runSignup()
	case "logout":
		runLogout()
	case "whoami":
		runWhoami()
	case "health":
		runHealth()
	case "clear-cache":
		runClearCache()
	case "events":
		runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "tl: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
