package affinity_test

import (
	"testing"

	"github.com/herohde/ccmatch/pkg/affinity"
	"github.com/stretchr/testify/assert"
)

func TestDetectTopologyNonEmpty(t *testing.T) {
	topo := affinity.DetectTopology()
	assert.NotEmpty(t, topo)

	seen := map[int]bool{}
	for _, core := range topo {
		assert.NotEmpty(t, core)
		for _, cpu := range core {
			assert.False(t, seen[cpu], "cpu %v listed in more than one core", cpu)
			seen[cpu] = true
		}
	}
}
