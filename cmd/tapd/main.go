// tapd - Touchscreen double-tap daemon
//
// tapd watches a multitouch evdev device for double taps on the screen
// edges and answers them by injecting pre-recorded or generated swipe
// gestures back into the same device:
//
//	tapd run        Run the gesture daemon
//	tapd record     Stream a touch trace from the device to stdout
//	tapd replay     Inject a trace from stdin or a named action
//	tapd actions    List the available actions
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		cmdRun(os.Args[2:])
	case "record":
		cmdRecord(os.Args[2:])
	case "replay":
		cmdReplay(os.Args[2:])
	case "actions":
		cmdActions(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`tapd - Touchscreen double-tap daemon

USAGE:
    tapd <command> [options]

COMMANDS:
    run         Watch the touchscreen and inject gestures on double taps
    record      Grab the device and stream trace records to stdout
    replay      Inject a trace from stdin or a named action
    actions     List the available actions
    help        Show this help message

Run 'tapd <command> -h' for command options.`)
}
