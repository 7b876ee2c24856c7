//go:build plan9

package main

import "os"

// shutdownSignals are the OS signals that trigger a clean exit.
var shutdownSignals = []os.Signal{os.Interrupt}

// reloadSignals is empty: plan9 notes have no hangup equivalent we can
// catch here, so reloads come from the file watcher alone.
var reloadSignals []os.Signal
