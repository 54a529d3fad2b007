package main

import (
	"flag"
	"os"

	"deres-cli/cmd"
	"deres-cli/node"
)

func main() {
	// Special handling for the 'node' command before Cobra takes over.
	if len(os.Args) > 1 && os.Args[1] == "node" {
		startPaperNode(os.Args[2:])
	} else {
		cmd.Execute()
	}
}

func startPaperNode(args []string) {
	fs := flag.NewFlagSet("node", flag.ExitOnError)
	peerOnly := fs.Bool("peer-only", false, "serve papers without the local HTTP API")
	storeDir := fs.String("store", "papers", "directory holding paper content files")
	_ = fs.Parse(args)

	node.StartNode(*peerOnly, *storeDir)
}
