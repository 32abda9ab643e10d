package capture

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/opencrew/pitchboard/internal/errors"
)

var ErrDeviceBusy = errors.NewSentinel("capture device is already in use")

// FFmpegDevice records webcam and microphone through an ffmpeg subprocess.
// At most one handle is live at a time; a second Acquire fails with
// ErrDeviceBusy until the first handle is released.
type FFmpegDevice struct {
	// VideoInput is the v4l2 device path, e.g. /dev/video0.
	VideoInput string
	// AudioInput is the ALSA capture device, e.g. "default".
	AudioInput string

	logger *slog.Logger
	mu     sync.Mutex
	inUse  bool
}

func NewFFmpegDevice(videoInput, audioInput string, logger *slog.Logger) *FFmpegDevice {
	return &FFmpegDevice{
		VideoInput: videoInput,
		AudioInput: audioInput,
		logger:     logger.With("source", "capture.FFmpegDevice"),
	}
}

// ffmpegArgs builds the recording command line. ffmpeg finalizes the webm
// container on SIGINT, which is how Stop ends the recording cleanly.
func ffmpegArgs(videoInput, audioInput, outputPath string) []string {
	return []string{
		"-y",
		"-f", "v4l2",
		"-i", videoInput,
		"-f", "alsa",
		"-i", audioInput,
		"-c:v", "libvpx",
		"-c:a", "libvorbis",
		outputPath,
	}
}

func (d *FFmpegDevice) Acquire(ctx context.Context) (Handle, error) {
	d.mu.Lock()
	if d.inUse {
		d.mu.Unlock()
		return nil, ErrDeviceBusy
	}
	d.inUse = true
	d.mu.Unlock()

	release := func() {
		d.mu.Lock()
		d.inUse = false
		d.mu.Unlock()
	}

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		release()
		return nil, errors.Wrap(err, "ffmpeg not available")
	}

	dir, err := os.MkdirTemp("", "pitchboard-capture-")
	if err != nil {
		release()
		return nil, errors.Wrap(err, "create capture directory")
	}
	outputPath := filepath.Join(dir, "pitch.webm")

	cmd := exec.Command(ffmpegPath, ffmpegArgs(d.VideoInput, d.AudioInput, outputPath)...)
	if err = cmd.Start(); err != nil {
		release()
		_ = os.RemoveAll(dir)
		return nil, errors.Wrap(err, "start ffmpeg",
			slog.String("video_input", d.VideoInput), slog.String("audio_input", d.AudioInput))
	}

	d.logger.LogAttrs(ctx, slog.LevelDebug, "capture started", slog.Int("pid", cmd.Process.Pid))

	return &ffmpegHandle{
		cmd:        cmd,
		dir:        dir,
		outputPath: outputPath,
		release:    release,
		logger:     d.logger,
	}, nil
}

type ffmpegHandle struct {
	cmd        *exec.Cmd
	dir        string
	outputPath string
	release    func()
	logger     *slog.Logger

	mu       sync.Mutex
	released bool
}

func (h *ffmpegHandle) Stop(ctx context.Context) (Media, error) {
	// SIGINT asks ffmpeg to finish writing the container before exiting.
	if err := h.cmd.Process.Signal(os.Interrupt); err != nil {
		return Media{}, errors.Wrap(err, "interrupt ffmpeg")
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- h.cmd.Wait() }()
	select {
	case <-ctx.Done():
		return Media{}, errors.Wrap(ctx.Err(), "wait for ffmpeg")
	case err := <-waitErr:
		// ffmpeg exits non-zero on SIGINT even after a clean finalize, so the
		// recorded file decides success.
		if err != nil {
			h.logger.LogAttrs(ctx, slog.LevelDebug, "ffmpeg exited", errors.SlogError(err))
		}
	case <-time.After(10 * time.Second):
		return Media{}, errors.New("timed out waiting for ffmpeg to finalize")
	}

	recorded, err := os.ReadFile(h.outputPath)
	if err != nil {
		return Media{}, errors.Wrap(err, "read recorded media")
	}
	if len(recorded) == 0 {
		return Media{}, errors.New("ffmpeg produced an empty recording")
	}
	return Media{Bytes: recorded, MIMEType: "video/webm"}, nil
}

func (h *ffmpegHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	h.released = true

	// Best effort: the process may have already exited after Stop.
	if h.cmd.ProcessState == nil {
		_ = h.cmd.Process.Kill()
		_ = h.cmd.Wait()
	}
	err := os.RemoveAll(h.dir)
	h.release()
	if err != nil {
		return errors.Wrap(err, "remove capture directory")
	}
	return nil
}
