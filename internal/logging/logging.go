// Package logging configures the process-wide structured logger. Log
// output goes to a rotated file under the state directory so it never
// interleaves with rendered boards on stdout.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a logger writing to stateDir/trackctl.log with rotation.
// verbose lowers the level to debug and mirrors entries to stderr.
func New(stateDir string, verbose bool) (*logrus.Logger, error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	log := logrus.New()
	log.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(stateDir, "trackctl.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	})
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetLevel(logrus.InfoLevel)

	if verbose {
		log.SetLevel(logrus.DebugLevel)
		log.AddHook(&stderrHook{})
	}
	return log, nil
}

// stderrHook mirrors entries to stderr for --verbose runs.
type stderrHook struct{}

func (h *stderrHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *stderrHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = os.Stderr.Write(line)
	return err
}
