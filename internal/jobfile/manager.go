package jobfile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/jackzampolin/imposer/internal/imposition"
)

// EnvPrefix prefixes environment overrides, e.g. IMPOSER_JOB_SOURCE.
const EnvPrefix = "IMPOSER"

// reloadDelay coalesces the burst of events editors produce on save.
const reloadDelay = 100 * time.Millisecond

// Manager loads a job file and reloads it when it changes.
type Manager struct {
	path   string
	logger *slog.Logger

	mu        sync.RWMutex
	file      *File
	callbacks []func(*File)
}

// NewManager loads the job file at path.
func NewManager(path string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		path:      path,
		logger:    logger,
		callbacks: make([]func(*File), 0),
	}

	f, err := m.load()
	if err != nil {
		return nil, err
	}
	m.file = f
	return m, nil
}

// Load reads and validates a job file.
func Load(path string) (*File, error) {
	m, err := NewManager(path, nil)
	if err != nil {
		return nil, err
	}
	return m.Get(), nil
}

// Path returns the job file path.
func (m *Manager) Path() string {
	return m.path
}

// Get returns the current job file (thread-safe).
func (m *Manager) Get() *File {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.file
}

// OnChange registers a callback for job file changes.
func (m *Manager) OnChange(fn func(*File)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// isINI reports whether path is read as INI. Anything that is not YAML or
// JSON is treated as INI.
func isINI(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return false
	default:
		return true
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultFile()
	v.SetDefault("job.name", "")
	v.SetDefault("job.source", "")
	v.SetDefault("job.output_directory", d.Job.OutputDirectory)
	v.SetDefault("job.pages_per_sheet", d.Job.PagesPerSheet)
	v.SetDefault("job.sheets_per_signature", d.Job.SheetsPerSignature)
	v.SetDefault("job.output", "")
	v.SetDefault("job.output_mode", "")
	v.SetDefault("page_size.width", 0.0)
	v.SetDefault("page_size.height", 0.0)
}

// load reads the file into a fresh viper instance and decodes it.
func (m *Manager) load() (*File, error) {
	v, err := newViper(m.path, m.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", imposition.ErrConfiguration, err)
	}
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: reading job file: %w", imposition.ErrConfiguration, err)
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal %s: %v", imposition.ErrConfiguration, m.path, err)
	}
	if err := Validate(&f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", imposition.ErrConfiguration, m.path, err)
	}
	return &f, nil
}

// WatchConfig enables hot-reloading of the job file. Reloads stop once ctx
// is done. A file that fails to load is logged and the previous contents
// are kept.
func (m *Manager) WatchConfig(ctx context.Context) error {
	v, err := newViper(m.path, m.logger)
	if err != nil {
		return err
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	v.OnConfigChange(func(fsnotify.Event) {
		if ctx.Err() != nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(reloadDelay, func() {
			if ctx.Err() == nil {
				m.reload()
			}
		})
	})
	v.WatchConfig()
	return nil
}

func (m *Manager) reload() {
	f, err := m.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.logger.Debug("job file missing during reload", "path", m.path)
			return
		}
		m.logger.Warn("job file reload failed, keeping previous contents", "path", m.path, "error", err)
		return
	}

	m.mu.Lock()
	m.file = f
	callbacks := make([]func(*File), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	m.logger.Info("job file reloaded", "path", m.path)
	for _, fn := range callbacks {
		fn(f)
	}
}
