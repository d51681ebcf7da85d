package capture

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cvview/internal/logger"
	"cvview/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

const clipFrames = 5

// writeClip records a short MJPEG clip and returns its path.
func writeClip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.avi")

	w, err := gocv.VideoWriterFile(path, "MJPG", 25, 32, 24, true)
	require.NoError(t, err)
	if !w.IsOpened() {
		w.Close()
		t.Skip("MJPG writer not available in this OpenCV build")
	}
	for i := 0; i < clipFrames; i++ {
		mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(i*40), 80, 160, 0), 24, 32, gocv.MatTypeCV8UC3)
		require.NoError(t, w.Write(mat))
		mat.Close()
	}
	require.NoError(t, w.Close())
	return path
}

// collector records submitted frames.
type collector struct {
	mu     sync.Mutex
	frames []*models.Frame
	notify chan struct{}
}

func newCollector() *collector {
	return &collector{notify: make(chan struct{}, 1024)}
}

func (c *collector) submit(f *models.Frame) {
	c.mu.Lock()
	c.frames = append(c.frames, f)
	c.mu.Unlock()
	c.notify <- struct{}{}
}

func (c *collector) seqs() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]uint64, len(c.frames))
	for i, f := range c.frames {
		out[i] = f.Seq
	}
	return out
}

func (c *collector) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-c.notify:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out after %d of %d frames", i, n)
		}
	}
}

func requireIncreasing(t *testing.T, seqs []uint64) {
	t.Helper()
	for i, s := range seqs {
		require.Equal(t, uint64(i+1), s)
	}
}

func TestOpenFileMissing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing.avi"), 0, false, logger.NoOpLogger{})
	require.Error(t, err)
}

func TestRunReadsFileToEnd(t *testing.T) {
	src, err := OpenFile(writeClip(t), 50, false, logger.NoOpLogger{})
	require.NoError(t, err)
	assert.Equal(t, 50.0, src.FPS())

	c := newCollector()
	start := time.Now()
	require.NoError(t, src.Run(context.Background(), c.submit))
	elapsed := time.Since(start)

	seqs := c.seqs()
	require.Len(t, seqs, clipFrames)
	requireIncreasing(t, seqs)
	// one tick per frame at 50 fps
	assert.GreaterOrEqual(t, elapsed, (clipFrames-1)*20*time.Millisecond)

	f := c.frames[0]
	assert.Equal(t, 32, f.Width)
	assert.Equal(t, 24, f.Height)
	assert.Equal(t, models.FormatBGR24, f.Format)
	assert.False(t, f.Timestamp.IsZero())
}

func TestRunLoopsUntilCancelled(t *testing.T) {
	src, err := OpenFile(writeClip(t), MaxFPS, true, logger.NoOpLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	c := newCollector()
	errc := make(chan error, 1)
	go func() { errc <- src.Run(ctx, c.submit) }()

	c.wait(t, 2*clipFrames+1)
	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
	requireIncreasing(t, c.seqs())
}

func TestShutdownStopsRun(t *testing.T) {
	src, err := OpenFile(writeClip(t), MaxFPS, true, logger.NoOpLogger{})
	require.NoError(t, err)

	c := newCollector()
	errc := make(chan error, 1)
	go func() { errc <- src.Run(context.Background(), c.submit) }()
	c.wait(t, 1)

	src.Shutdown()
	require.NoError(t, <-errc)
	assert.ErrorIs(t, src.Run(context.Background(), c.submit), ErrClosed)
}

func TestShutdownBeforeRun(t *testing.T) {
	src, err := OpenFile(writeClip(t), 0, false, logger.NoOpLogger{})
	require.NoError(t, err)

	src.Shutdown()
	src.Shutdown()
	assert.ErrorIs(t, src.Run(context.Background(), func(*models.Frame) {}), ErrClosed)
}

func TestFPSIsCapped(t *testing.T) {
	src, err := OpenFile(writeClip(t), 1e12, false, logger.NoOpLogger{})
	require.NoError(t, err)
	defer src.Shutdown()
	assert.Equal(t, float64(MaxFPS), src.FPS())
}
