// Package capture reads frames from a camera or video file.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cvview/internal/logger"
	"cvview/internal/models"
	"cvview/internal/opencv/conversion"

	"gocv.io/x/gocv"
)

var ErrClosed = errors.New("capture source closed")

const (
	fallbackFPS = 30
	// MaxFPS bounds the read rate; the ticker period must stay positive.
	MaxFPS = 240
	// maxRewinds is how many rewinds in a row may fail to yield a frame
	// before a looping file is treated as ended.
	maxRewinds = 3
)

// Source produces frames from a gocv VideoCapture at a fixed rate. Run owns
// the capture: it is released when Run returns, or by Shutdown if Run never
// started.
type Source struct {
	name   string
	file   bool
	loop   bool
	fps    float64
	logger logger.Logger

	mu      sync.Mutex
	vc      *gocv.VideoCapture
	running bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}
	seq     uint64
}

// OpenDevice opens camera id. fps <= 0 uses the device's reported rate.
func OpenDevice(id int, fps float64, log logger.Logger) (*Source, error) {
	vc, err := gocv.VideoCaptureDevice(id)
	if err != nil {
		return nil, fmt.Errorf("open device %d: %w", id, err)
	}
	return newSource(vc, fmt.Sprintf("device:%d", id), false, false, fps, log)
}

// OpenFile opens a video file. When loop is set the file restarts at its end.
func OpenFile(path string, fps float64, loop bool, log logger.Logger) (*Source, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	return newSource(vc, path, true, loop, fps, log)
}

func newSource(vc *gocv.VideoCapture, name string, file, loop bool, fps float64, log logger.Logger) (*Source, error) {
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("capture %s did not open", name)
	}
	if fps <= 0 {
		fps = vc.Get(gocv.VideoCaptureFPS)
	}
	if fps <= 0 {
		fps = fallbackFPS
	}
	fps = min(fps, MaxFPS)
	return &Source{
		name:   name,
		file:   file,
		loop:   loop,
		fps:    fps,
		logger: log.WithComponent("capture"),
		vc:     vc,
		done:   make(chan struct{}),
	}, nil
}

func (s *Source) Name() string { return s.name }

func (s *Source) FPS() float64 { return s.fps }

// Run reads frames until ctx is cancelled, the source ends or a read fails,
// passing each one to submit. A file that reaches its end without looping
// returns nil.
func (s *Source) Run(ctx context.Context, submit func(*models.Frame)) error {
	s.mu.Lock()
	if s.closed || s.running {
		s.mu.Unlock()
		return ErrClosed
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.closed = true
		s.vc.Close()
		s.mu.Unlock()
		close(s.done)
	}()

	s.logger.Info("capture started", map[string]interface{}{
		"source": s.name,
		"fps":    s.fps,
	})

	mat := gocv.NewMat()
	defer mat.Close()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / s.fps))
	defer ticker.Stop()

	rewinds := 0
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("capture stopped", map[string]interface{}{"frames": s.seq})
			return nil
		case <-ticker.C:
		}

		if ok := s.vc.Read(&mat); !ok || mat.Empty() {
			if s.file && s.loop && s.seq > 0 && rewinds < maxRewinds {
				rewinds++
				s.vc.Set(gocv.VideoCapturePosFrames, 0)
				continue
			}
			if s.file {
				s.logger.Info("end of video", map[string]interface{}{"frames": s.seq})
				return nil
			}
			err := fmt.Errorf("read from %s failed", s.name)
			s.logger.Error("capture read failed", err, nil)
			return err
		}

		rewinds = 0

		frame, err := conversion.FrameFromMat(mat)
		if err != nil {
			s.logger.Warning("frame conversion failed", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		s.seq++
		frame.Seq = s.seq
		frame.Timestamp = time.Now()
		submit(frame)
	}
}

// Shutdown stops Run and waits for it to release the capture.
func (s *Source) Shutdown() {
	s.mu.Lock()
	if !s.running {
		if !s.closed {
			s.closed = true
			s.vc.Close()
		}
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	<-s.done
}
