// Package tuner picks how many files satchel transforms at once when the
// user asks for automatic parallelism. Each concurrent encryption derives a
// key with Argon2id, which holds kdf.memory in RAM for the duration, so the
// job count is bounded by memory as well as by CPU cores.
package tuner

// SystemResources contains detected system resources.
type SystemResources struct {
	// CPUCores is the number of logical CPU cores available.
	CPUCores int

	// TotalRAM is the total physical RAM in bytes.
	TotalRAM int64

	// AvailableRAM is the RAM in bytes satchel may plan to use.
	// This may be an estimate based on system heuristics.
	AvailableRAM int64
}

const (
	// maxJobs caps automatic parallelism. Beyond this the disk, not the
	// CPU, is the bottleneck.
	maxJobs = 16

	// jobOverhead estimates the memory of one job besides the KDF: the
	// input file, its output and the zip/GCM working buffers.
	jobOverhead = 32 * 1024 * 1024

	// memoryFraction is the share of available RAM automatic jobs may use.
	memoryFraction = 0.5
)

// Jobs returns the number of concurrent transforms for res when each key
// derivation uses kdfMemoryKiB of memory. The result is between 1 and
// maxJobs.
func Jobs(res SystemResources, kdfMemoryKiB uint32) int {
	jobs := min(max(res.CPUCores, 1), maxJobs)

	perJob := int64(kdfMemoryKiB)*1024 + jobOverhead
	budget := int64(float64(res.AvailableRAM) * memoryFraction)
	if byMemory := int(budget / perJob); byMemory < jobs {
		jobs = byMemory
	}
	return max(jobs, 1)
}
