package tuner

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gib = 1024 * 1024 * 1024

func TestDetect(t *testing.T) {
	resources, err := Detect()
	require.NoError(t, err)

	assert.Equal(t, runtime.NumCPU(), resources.CPUCores)
	assert.Positive(t, resources.TotalRAM)
	assert.Positive(t, resources.AvailableRAM)
	assert.LessOrEqual(t, resources.AvailableRAM, resources.TotalRAM)
}

func TestJobs(t *testing.T) {
	tests := []struct {
		name      string
		resources SystemResources
		kdfKiB    uint32
		want      int
	}{
		{
			name:      "cpu bound",
			resources: SystemResources{CPUCores: 4, AvailableRAM: 16 * gib},
			kdfKiB:    64 * 1024,
			want:      4,
		},
		{
			name:      "capped",
			resources: SystemResources{CPUCores: 128, AvailableRAM: 512 * gib},
			kdfKiB:    64 * 1024,
			want:      maxJobs,
		},
		{
			// 1 GiB budget / (64 MiB + 32 MiB) = 10
			name:      "memory bound",
			resources: SystemResources{CPUCores: 32, AvailableRAM: 2 * gib},
			kdfKiB:    64 * 1024,
			want:      10,
		},
		{
			name:      "heavy kdf on a small machine",
			resources: SystemResources{CPUCores: 8, AvailableRAM: 1 * gib},
			kdfKiB:    2 * 1024 * 1024,
			want:      1,
		},
		{
			name:      "nothing detected",
			resources: SystemResources{},
			kdfKiB:    64 * 1024,
			want:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Jobs(tt.resources, tt.kdfKiB))
		})
	}
}
