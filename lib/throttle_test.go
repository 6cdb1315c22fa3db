package lib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottle(t *testing.T) {
	var got []int
	fn := Throttle(func(x int) { got = append(got, x) }, time.Hour)
	fn(1)
	fn(2)
	fn(3)
	assert.Equal(t, []int{1}, got)

	got = nil
	fn = Throttle(func(x int) { got = append(got, x) }, 0)
	fn(1)
	fn(2)
	assert.Equal(t, []int{1, 2}, got)
}
