package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "state":
			stateCmd(os.Args[2:])
			return
		case "snapshot":
			postCmd("snapshot", os.Args[2:])
			return
		case "reset":
			postCmd("reset", os.Args[2:])
			return
		case "watch":
			watchCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: admin state|snapshot|reset|watch [-url http://127.0.0.1:8080]")
	os.Exit(2)
}
