package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// ChainProfile is the YAML description of a chain target. Operators edit
// the file to repoint the gateway at another network without restarting.
type ChainProfile struct {
	Network  string `yaml:"network"`
	RPCURL   string `yaml:"rpc_url"`
	Contract string `yaml:"contract"`
}

// ProfileLoader reads a chain profile file and watches it for changes.
type ProfileLoader struct {
	path     string
	mu       sync.RWMutex
	current  *ChainProfile
	onChange []func(*ChainProfile)
	watcher  *fsnotify.Watcher
}

// NewProfileLoader creates a ProfileLoader and performs the initial load.
func NewProfileLoader(path string) (*ProfileLoader, error) {
	l := &ProfileLoader{path: path}
	profile, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = profile
	return l, nil
}

// Profile returns the current (latest) chain profile.
func (l *ProfileLoader) Profile() *ChainProfile {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the profile reloads.
func (l *ProfileLoader) OnChange(fn func(*ChainProfile)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the profile on file
// changes. Call the returned stop function to clean up.
func (l *ProfileLoader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("profile watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("profile watcher add %s: %w", l.path, err)
	}
	l.watcher = w

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					profile, err := l.load()
					if err != nil {
						// Keep serving the previous profile.
						continue
					}
					l.publish(profile)
				}
			case <-w.Errors:
				// Ignore watcher errors.
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

// Reload forces an immediate re-read of the profile file.
func (l *ProfileLoader) Reload() (*ChainProfile, error) {
	profile, err := l.load()
	if err != nil {
		return nil, err
	}
	l.publish(profile)
	return profile, nil
}

func (l *ProfileLoader) publish(profile *ChainProfile) {
	l.mu.Lock()
	l.current = profile
	callbacks := make([]func(*ChainProfile), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(profile)
	}
}

func (l *ProfileLoader) load() (*ChainProfile, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", l.path, err)
	}
	var profile ChainProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", l.path, err)
	}
	if profile.RPCURL == "" {
		return nil, fmt.Errorf("profile %s: rpc_url is required", l.path)
	}
	if profile.Contract == "" {
		return nil, fmt.Errorf("profile %s: contract is required", l.path)
	}
	return &profile, nil
}
