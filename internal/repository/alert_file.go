package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"VixNav/internal/domain/models"
	"VixNav/internal/domain/pricelimit"
	"VixNav/internal/domain/repository"
)

// FileAlertSink writes each alert report to price_alert_YYYYMMDDHHMM.log in dir.
type FileAlertSink struct {
	dir string
}

var _ repository.AlertSink = (*FileAlertSink)(nil)

func NewFileAlertSink(dir string) *FileAlertSink {
	return &FileAlertSink{dir: dir}
}

func (s *FileAlertSink) Name() string { return "file" }

// Send appends so that two alerts in the same minute are both kept.
func (s *FileAlertSink) Send(_ context.Context, a *models.Alert) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("alert file: %w", err)
	}
	path := s.Path(a)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("alert file: %w", err)
	}
	if _, err := f.WriteString(a.Report()); err != nil {
		f.Close()
		return fmt.Errorf("alert file: %w", err)
	}
	return f.Close()
}

// Path returns where a is written.
func (s *FileAlertSink) Path(a *models.Alert) string {
	return filepath.Join(s.dir, "price_alert_"+a.Time.In(pricelimit.JST).Format("200601021504")+".log")
}
