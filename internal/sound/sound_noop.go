//go:build ci

package sound

// 音效名称
const (
	CueTick   = "tick"
	CueGo     = "go"
	CueTap    = "tap"
	CueFinish = "finish"
)

type SoundManager struct{}

func NewSoundManager() *SoundManager {
	return &SoundManager{}
}

func (sm *SoundManager) Init() error {
	return nil
}

func (sm *SoundManager) Play(name string) {
	// No-op
}

func (sm *SoundManager) Close() {
	// No-op
}
