// Command helix looks up Twitch users, streams, clips and follow dates from
// the command line using application credentials.
package main

import (
	"os"

	"github.com/Guliveer/twitch-helix-go/cmd/helix/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
