package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	s := New(0)
	s.Save("a", "hi", "hello")
	s.Save("a", "how are you", "fine")

	got := s.Load("a", 0)
	require.Len(t, got, 2)
	assert.Equal(t, "hi", got[0].User)
	assert.Equal(t, "fine", got[1].AI)
	assert.False(t, got[0].At.IsZero())

	assert.Empty(t, s.Load("b", 0))
}

func TestBounded(t *testing.T) {
	s := New(DefaultLimit)
	for i := 0; i < 30; i++ {
		s.Save("a", fmt.Sprintf("q%d", i), fmt.Sprintf("r%d", i))
	}
	got := s.Load("a", 0)
	require.Len(t, got, DefaultLimit)
	assert.Equal(t, "q10", got[0].User)
	assert.Equal(t, "q29", got[len(got)-1].User)

	last := s.Load("a", 3)
	require.Len(t, last, 3)
	assert.Equal(t, "q27", last[0].User)
}

func TestLoadReturnsCopy(t *testing.T) {
	s := New(5)
	s.Save("a", "x", "y")
	got := s.Load("a", 0)
	got[0].User = "mutated"
	assert.Equal(t, "x", s.Load("a", 0)[0].User)
}

func TestForget(t *testing.T) {
	s := New(5)
	s.Save("a", "x", "y")
	s.Save("b", "x", "y")
	assert.Equal(t, 2, s.Clients())
	s.Forget("a")
	assert.Equal(t, 1, s.Clients())
	assert.Empty(t, s.Load("a", 0))
}

func TestConcurrentSave(t *testing.T) {
	s := New(DefaultLimit)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Save("a", fmt.Sprint(i), "r")
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.Load("a", 0), DefaultLimit)
}
