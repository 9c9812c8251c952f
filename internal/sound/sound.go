//go:build !ci

// Package sound plays short synthesized cues for race events.
package sound

import (
	"fmt"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"
)

// 音效名称
const (
	CueTick   = "tick"   // 倒计时读秒
	CueGo     = "go"     // 开跑
	CueTap    = "tap"    // 点击
	CueFinish = "finish" // 冲线
)

type SoundManager struct {
	buffers map[string]*beep.Buffer
	enabled bool
}

func NewSoundManager() *SoundManager {
	return &SoundManager{
		buffers: make(map[string]*beep.Buffer),
		enabled: false,
	}
}

// tone 描述一段正弦音
type tone struct {
	freq float64
	dur  time.Duration
}

var cues = map[string]tone{
	CueTick:   {freq: 880, dur: 90 * time.Millisecond},
	CueGo:     {freq: 1318, dur: 280 * time.Millisecond},
	CueTap:    {freq: 660, dur: 25 * time.Millisecond},
	CueFinish: {freq: 1760, dur: 450 * time.Millisecond},
}

func (sm *SoundManager) Init() error {
	sampleRate := beep.SampleRate(44100)
	// Init speaker with smaller buffer for lower latency
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	format := beep.Format{
		SampleRate:  sampleRate,
		NumChannels: 2,
		Precision:   4,
	}

	for name, t := range cues {
		streamer, err := generators.SineTone(sampleRate, t.freq)
		if err != nil {
			return fmt.Errorf("failed to generate tone %q: %w", name, err)
		}
		buffer := beep.NewBuffer(format)
		buffer.Append(beep.Take(sampleRate.N(t.dur), streamer))
		sm.buffers[name] = buffer
	}

	sm.enabled = true
	return nil
}

func (sm *SoundManager) Play(name string) {
	if !sm.enabled {
		return
	}

	buffer, ok := sm.buffers[name]
	if !ok {
		// Silent failure if cue not found
		return
	}

	speaker.Play(buffer.Streamer(0, buffer.Len()))
}

func (sm *SoundManager) Close() {
	sm.enabled = false
}
