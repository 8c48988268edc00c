package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hiveguard/hiveguard/internal/setup/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Manager handles the creation and management of log files and directories.
// Each process run gets its own timestamped session directory; old sessions
// beyond the retention limit are pruned.
type Manager struct {
	logDir            string
	currentSessionDir string
	level             string
	maxLogsToKeep     int
}

// NewManager creates a log manager rooted at logDir.
func NewManager(logDir string, debugCfg *config.Debug) *Manager {
	return &Manager{
		logDir:        logDir,
		level:         debugCfg.LogLevel,
		maxLogsToKeep: debugCfg.MaxLogsToKeep,
	}
}

// GetLoggers builds the main and database loggers. Both write JSON to files
// in the session directory; the main logger additionally mirrors to stderr
// for interactive use.
func (m *Manager) GetLoggers() (*zap.Logger, *zap.Logger, error) {
	if err := m.setupSessionDir(); err != nil {
		return nil, nil, err
	}

	level, err := zapcore.ParseLevel(m.level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	mainLogger, err := m.buildLogger("main.log", level, true)
	if err != nil {
		return nil, nil, err
	}

	dbLogger, err := m.buildLogger("database.log", level, false)
	if err != nil {
		return nil, nil, err
	}

	return mainLogger, dbLogger, nil
}

// setupSessionDir creates this run's log directory and prunes old sessions.
func (m *Manager) setupSessionDir() error {
	m.currentSessionDir = filepath.Join(m.logDir, time.Now().UTC().Format("2006-01-02_15-04-05"))

	if err := os.MkdirAll(m.currentSessionDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	return m.pruneOldSessions()
}

// pruneOldSessions deletes the oldest session directories beyond the
// retention limit.
func (m *Manager) pruneOldSessions() error {
	if m.maxLogsToKeep <= 0 {
		return nil
	}

	entries, err := os.ReadDir(m.logDir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	var sessions []string

	for _, entry := range entries {
		if entry.IsDir() {
			sessions = append(sessions, entry.Name())
		}
	}

	if len(sessions) <= m.maxLogsToKeep {
		return nil
	}

	// Timestamped names sort chronologically.
	sort.Strings(sessions)

	for _, name := range sessions[:len(sessions)-m.maxLogsToKeep] {
		if err := os.RemoveAll(filepath.Join(m.logDir, name)); err != nil {
			return fmt.Errorf("failed to prune old log session: %w", err)
		}
	}

	return nil
}

// buildLogger constructs a zap logger writing to the named file, optionally
// mirrored to stderr with console encoding.
func (m *Manager) buildLogger(filename string, level zapcore.Level, mirrorStderr bool) (*zap.Logger, error) {
	logPath := filepath.Join(m.currentSessionDir, filename)

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(logFile),
		level,
	)

	cores := []zapcore.Core{fileCore}

	if mirrorStderr {
		consoleConfig := zap.NewDevelopmentEncoderConfig()
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleConfig),
			zapcore.AddSync(os.Stderr),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}
