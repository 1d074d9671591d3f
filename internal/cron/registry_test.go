package cron

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryKeepsOrderAndSkipsNil(t *testing.T) {
	a, b := &countingJob{name: "a"}, &countingJob{name: "b"}
	registry := NewRegistry(a, nil)
	registry.Register(nil)
	registry.Register(b)

	jobs := registry.Jobs()
	assert.Equal(t, []Job{a, b}, jobs)

	jobs[0] = nil
	assert.Equal(t, a, registry.Jobs()[0])
}
