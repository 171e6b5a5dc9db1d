package export

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Arupreza/ScholarScout/internal/common"
)

// Output formats, chosen by destination extension.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Service writes assembled tables to their destination.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// FormatFor returns the table format for dest: xlsx for ".xlsx", csv otherwise.
func FormatFor(dest string) string {
	if strings.EqualFold(filepath.Ext(dest), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Write stores t at dest in one step. mode is one of common.WriteModeOverwrite
// (default), common.WriteModeCreate (fail if dest exists) or
// common.WriteModeAppend (CSV only; the header is written only when dest is
// new or empty). Overwrite and create go through a temp file in the same
// directory that is renamed into place. Missing parent directories are
// created. Failures are OutputError.
func (s *Service) Write(t Table, dest, mode string) error {
	start := time.Now()
	if strings.TrimSpace(dest) == "" {
		return common.NewAppError(common.CodeOutputError, "output destination is empty", nil)
	}
	if mode == "" {
		mode = common.WriteModeOverwrite
	}
	format := FormatFor(dest)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return common.NewAppError(common.CodeOutputError, "create output directory", err)
	}

	var err error
	switch mode {
	case common.WriteModeAppend:
		if format != FormatCSV {
			return common.NewAppError(common.CodeOutputError, "append mode is only supported for CSV output", nil)
		}
		err = s.appendCSV(t, dest)
	case common.WriteModeCreate:
		if _, statErr := os.Stat(dest); statErr == nil {
			return common.NewAppError(common.CodeOutputError, fmt.Sprintf("%s already exists", dest), fs.ErrExist)
		}
		err = s.replace(t, dest, format)
	case common.WriteModeOverwrite:
		err = s.replace(t, dest, format)
	default:
		return common.NewAppError(common.CodeOutputError, fmt.Sprintf("unknown write mode %q", mode), nil)
	}
	if err != nil {
		s.logger.Error("export.write.failed", "dest", dest, "format", format, "mode", mode, "error", err)
		return common.NewAppError(common.CodeOutputError, "write "+dest, err)
	}

	s.logger.Info("export.write.ok",
		"dest", dest,
		"format", format,
		"mode", mode,
		"rows", t.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Encode renders t in format without touching the filesystem.
func Encode(t Table, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatXLSX:
		err = WriteXLSX(&buf, t)
	default:
		err = WriteCSV(&buf, t, true)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) replace(t Table, dest, format string) (err error) {
	data, err := Encode(t, format)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func (s *Service) appendCSV(t Table, dest string) error {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, t, st.Size() == 0); err != nil {
		_ = f.Close()
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Join(f.Sync(), f.Close())
}
