//go:build !darwin && !linux

package tuner

import (
	"runtime"
)

// defaultTotalRAM is assumed when the platform offers no cheap way to ask.
const defaultTotalRAM = 8 * 1024 * 1024 * 1024

// Detect reports runtime.NumCPU() cores and a fixed memory estimate.
func Detect() (SystemResources, error) {
	return SystemResources{
		CPUCores:     runtime.NumCPU(),
		TotalRAM:     defaultTotalRAM,
		AvailableRAM: defaultTotalRAM / 2,
	}, nil
}
