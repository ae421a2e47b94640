package scraper

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadTracker_FiresOnce(t *testing.T) {
	var fired int32
	tr := NewLoadTracker(func() { atomic.AddInt32(&fired, 1) })
	tr.Begin(KindInfo, KindCast)

	tr.Complete(KindInfo)
	assert.False(t, tr.IsDone())
	assert.Equal(t, []RequestKind{KindCast}, tr.Pending())

	tr.Complete(KindCast)
	tr.Complete(KindCast)
	tr.Complete(KindImages)

	assert.True(t, tr.IsDone())
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestLoadTracker_EmptyBeginCompletesImmediately(t *testing.T) {
	var fired int32
	tr := NewLoadTracker(func() { atomic.AddInt32(&fired, 1) })
	tr.Begin()

	assert.True(t, tr.IsDone())
	assert.Equal(t, int32(1), fired)
	select {
	case <-tr.Done():
	default:
		t.Fatal("Done channel should be closed")
	}
}

func TestLoadTracker_ConcurrentCompletes(t *testing.T) {
	var fired int32
	tr := NewLoadTracker(func() { atomic.AddInt32(&fired, 1) })
	kinds := []RequestKind{KindInfo, KindCast, KindTrailers, KindImages, KindReleases}
	tr.Begin(kinds...)
	done := tr.Done()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		for _, k := range kinds {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tr.Complete(k)
			}()
		}
	}
	wg.Wait()

	<-done
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestLoadTracker_BeginResets(t *testing.T) {
	var fired int32
	tr := NewLoadTracker(func() { atomic.AddInt32(&fired, 1) })

	tr.Begin(KindInfo)
	tr.Complete(KindInfo)
	tr.Begin(KindImages)
	assert.False(t, tr.IsDone())
	tr.Complete(KindInfo)
	assert.False(t, tr.IsDone())
	tr.Complete(KindImages)

	assert.Equal(t, int32(2), atomic.LoadInt32(&fired))
}
