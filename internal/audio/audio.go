package audio

import (
	"sync"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Listener is where sounds are heard from.
type Listener struct {
	Position rl.Vector3
	Forward  rl.Vector3
	Right    rl.Vector3
}

// NewListener builds an orthonormal frame from a view direction. A zero
// forward means +X.
func NewListener(pos, forward, up rl.Vector3) Listener {
	l := Listener{Position: pos, Forward: rl.Vector3{X: 1}, Right: rl.Vector3{Y: -1}}
	if n := rl.Vector3Length(forward); n > 0.001 {
		l.Forward = rl.Vector3Scale(forward, 1/n)
	}
	if r := rl.Vector3CrossProduct(l.Forward, up); rl.Vector3Length(r) > 0.001 {
		l.Right = rl.Vector3Normalize(r)
	}
	return l
}

// Spatialize returns the volume and pan of a source heard by l. Pan runs
// from 0 (left) to 1 (right). Sounds behind the listener are damped.
func Spatialize(l Listener, pos rl.Vector3, volume, maxDistance float32) (float32, float32) {
	offset := rl.Vector3Subtract(pos, l.Position)
	dist := rl.Vector3Length(offset)

	var v float32
	if dist < maxDistance {
		v = volume * (1 - dist/maxDistance)
	}
	if dist <= 0.001 {
		return v, 0.5
	}

	dir := rl.Vector3Scale(offset, 1/dist)
	pan := rl.Clamp(0.5+0.5*rl.Vector3DotProduct(dir, l.Right), 0, 1)
	if front := rl.Vector3DotProduct(dir, l.Forward); front < 0 {
		v *= 0.7 + 0.3*math32.Abs(front)
	}
	return v, pan
}

// voice is one playing instance of a sound. Voices made from the same file
// share its sample data through raylib aliases.
type voice struct {
	sound       rl.Sound
	pos         rl.Vector3
	volume      float32
	maxDistance float32
	loop        bool
	playing     bool
}

// Manager owns the audio device and every voice. A nil *Manager accepts
// every call and does nothing.
type Manager struct {
	mu       sync.Mutex
	listener Listener
	samples  map[string]rl.Sound
	voices   map[uint64]*voice
	lastID   uint64
}

// NewManager opens the audio device.
func NewManager() *Manager {
	rl.InitAudioDevice()
	return &Manager{
		listener: NewListener(rl.Vector3{}, rl.Vector3{X: 1}, rl.Vector3{Z: 1}),
		samples:  make(map[string]rl.Sound),
		voices:   make(map[uint64]*voice),
	}
}

// Close unloads every sound and shuts the device down.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.voices {
		rl.UnloadSoundAlias(v.sound)
	}
	for _, s := range m.samples {
		rl.UnloadSound(s)
	}
	m.voices, m.samples = nil, nil
	rl.CloseAudioDevice()
}

func (m *Manager) SetListener(l Listener) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.listener = l
	m.mu.Unlock()
}

// Open creates a voice for the file at path, loading the file on first use.
func (m *Manager) Open(path string) (uint64, bool) {
	if m == nil || path == "" {
		return 0, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sample, ok := m.samples[path]
	if !ok {
		sample = rl.LoadSound(path)
		if !rl.IsSoundValid(sample) {
			return 0, false
		}
		m.samples[path] = sample
	}
	m.lastID++
	m.voices[m.lastID] = &voice{sound: rl.LoadSoundAlias(sample), volume: 1, maxDistance: 50}
	return m.lastID, true
}

func (m *Manager) with(id uint64, fn func(v *voice)) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.voices[id]; ok {
		fn(v)
	}
}

// Play starts a voice. Looping voices are restarted by Update.
func (m *Manager) Play(id uint64, loop bool) {
	m.with(id, func(v *voice) {
		v.loop = loop
		v.playing = true
		rl.PlaySound(v.sound)
	})
}

func (m *Manager) Stop(id uint64) {
	m.with(id, func(v *voice) {
		v.playing = false
		rl.StopSound(v.sound)
	})
}

// Place moves a voice and sets its loudness and audible range.
func (m *Manager) Place(id uint64, pos rl.Vector3, volume, maxDistance float32) {
	m.with(id, func(v *voice) {
		v.pos = pos
		v.volume = volume
		if maxDistance > 0 {
			v.maxDistance = maxDistance
		}
	})
}

// Release stops and frees a voice. The shared sample stays loaded.
func (m *Manager) Release(id uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.voices[id]; ok {
		rl.StopSound(v.sound)
		rl.UnloadSoundAlias(v.sound)
		delete(m.voices, id)
	}
}

// Active returns the number of open voices.
func (m *Manager) Active() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Update restarts looping voices and applies distance and pan.
func (m *Manager) Update() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.voices {
		if !v.playing {
			continue
		}
		if !rl.IsSoundPlaying(v.sound) {
			if !v.loop {
				v.playing = false
				continue
			}
			rl.PlaySound(v.sound)
		}
		vol, pan := Spatialize(m.listener, v.pos, v.volume, v.maxDistance)
		rl.SetSoundVolume(v.sound, vol)
		rl.SetSoundPan(v.sound, pan)
	}
}

var (
	deviceMu sync.Mutex
	device   *Manager
)

// Init opens the shared device used by emitters. Until it is called
// emitters stay silent, so headless runs need no special casing.
func Init() *Manager {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	if device == nil {
		device = NewManager()
	}
	return device
}

// Shutdown closes the shared device.
func Shutdown() {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	device.Close()
	device = nil
}

// Device returns the shared manager, or nil when audio is off.
func Device() *Manager {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	return device
}
