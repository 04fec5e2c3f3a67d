package syncctx

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
)

func coord(version string) artifact.Coordinates {
	return artifact.Coordinates{GroupID: "com.example", ArtifactID: "widget", Version: version}
}

func TestExclusiveContextsSerialize(t *testing.T) {
	factory := NewFactory(t.TempDir(), nil)

	var counter int32
	var maxConcurrent int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, err := factory.NewContext(false, []artifact.Coordinates{coord("1.0")}, nil)
			require.NoError(t, err)
			defer ctx.Close()

			cur := atomic.AddInt32(&counter, 1)
			for {
				max := atomic.LoadInt32(&maxConcurrent)
				if cur <= max || atomic.CompareAndSwapInt32(&maxConcurrent, max, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&counter, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxConcurrent)
}

func TestDifferentFingerprintsDoNotBlockEachOther(t *testing.T) {
	factory := NewFactory(t.TempDir(), nil)

	ctx1, err := factory.NewContext(false, []artifact.Coordinates{coord("1.0")}, nil)
	require.NoError(t, err)
	defer ctx1.Close()

	done := make(chan struct{})
	go func() {
		ctx2, err := factory.NewContext(false, []artifact.Coordinates{coord("2.0")}, nil)
		require.NoError(t, err)
		ctx2.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unrelated coordinate should not block")
	}
}

func TestReentrantAcquireWithinSameContext(t *testing.T) {
	factory := NewFactory(t.TempDir(), nil)
	ctx, err := factory.NewContext(false, []artifact.Coordinates{coord("1.0"), coord("1.0")}, nil)
	require.NoError(t, err)
	ctx.Close()
}

func TestFingerprintIgnoresCaseAndSeparators(t *testing.T) {
	a := artifact.Coordinates{GroupID: "com.Example", ArtifactID: "Widget", Version: "1.0"}
	b := artifact.Coordinates{GroupID: "com.example", ArtifactID: "widget", Version: "1.0"}
	assert.Equal(t, artifactFingerprint(a), artifactFingerprint(b))

	c := artifact.Coordinates{GroupID: `com\example`, ArtifactID: "widget", Version: "1.0"}
	d := artifact.Coordinates{GroupID: "com/example", ArtifactID: "widget", Version: "1.0"}
	assert.Equal(t, artifactFingerprint(c), artifactFingerprint(d))
}
