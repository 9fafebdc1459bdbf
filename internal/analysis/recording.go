package analysis

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ergosense/posture.report/internal/pose"
)

// recordingFrame is one JSONL line of a landmark recording.
type recordingFrame struct {
	FrameIndex int            `json:"frame_index"`
	Detected   bool           `json:"detected"`
	Landmarks  pose.Landmarks `json:"landmarks,omitempty"`
}

// Recording is a FrameSource backed by a JSON-lines landmark capture,
// one frame per line in capture order. The whole recording is decoded
// up front so Seek is cheap.
type Recording struct {
	frames []Frame
	pos    int
}

// OpenRecording reads a JSONL landmark capture from disk.
func OpenRecording(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	var frames []Frame
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rf recordingFrame
		if err := json.Unmarshal(raw, &rf); err != nil {
			return nil, fmt.Errorf("recording %s line %d: %w", path, line, err)
		}
		frames = append(frames, Frame{Landmarks: rf.Landmarks, Detected: rf.Detected})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read recording %s: %w", path, err)
	}
	return &Recording{frames: frames}, nil
}

// NewRecording wraps an in-memory frame sequence as a FrameSource.
func NewRecording(frames []Frame) *Recording {
	return &Recording{frames: frames}
}

// Next returns the next frame in capture order.
func (r *Recording) Next() (Frame, error) {
	if r.pos >= len(r.frames) {
		return Frame{}, ErrEndOfStream
	}
	f := r.frames[r.pos]
	r.pos++
	return f, nil
}

// Total returns the number of frames in the recording.
func (r *Recording) Total() int { return len(r.frames) }

// Seek positions the cursor at the given frame index.
func (r *Recording) Seek(index int) error {
	if index < 0 || index > len(r.frames) {
		return fmt.Errorf("seek index %d out of range [0,%d]", index, len(r.frames))
	}
	r.pos = index
	return nil
}

// Close releases the recording. The in-memory form holds no resources.
func (r *Recording) Close() error { return nil }
