package main

import "github.com/zintix-labs/statlab/sdk/perf"

// makefile runner
func main() {
	bindVar()
	perf.RunPProf(executeExperiment, cfg.pprofmode)
}
