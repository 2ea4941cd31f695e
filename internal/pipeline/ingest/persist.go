package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/akolanti/mlingest/internal/domain/dataset"
	"github.com/akolanti/mlingest/internal/domain/pipelineError"
)

// WriteCSV writes a header row and one line per row, without an index column.
// Missing values become empty fields.
func WriteCSV(w io.Writer, frame *dataset.Frame) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(frame.Columns); err != nil {
		return err
	}
	record := make([]string, len(frame.Columns))
	for _, row := range frame.Rows {
		for i, column := range frame.Columns {
			record[i] = FormatValue(row[column])
		}
		// a lone empty field would be a blank line, which readers skip
		if len(record) == 1 && record[0] == "" {
			writer.Flush()
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return err
			}
			continue
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func FormatValue(v dataset.Value) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "True"
		}
		return "False"
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return formatFloat(val)
	default:
		return fmt.Sprint(val)
	}
}

// formatFloat keeps a trailing ".0" on integral values and switches to
// exponent form outside [1e-4, 1e16), the way float columns are usually rendered.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// stagedFile is a fully written temp file waiting to be renamed onto its destination.
type stagedFile struct {
	tmpPath  string
	destPath string
}

func stageFrame(frame *dataset.Frame, destPath string) (stagedFile, error) {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return stagedFile{}, fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(destPath)+".tmp-*")
	if err != nil {
		return stagedFile{}, fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	staged := stagedFile{tmpPath: tmp.Name(), destPath: destPath}

	if err := WriteCSV(tmp, frame); err != nil {
		_ = tmp.Close()
		staged.discard()
		return stagedFile{}, fmt.Errorf("write %s: %w", destPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		staged.discard()
		return stagedFile{}, fmt.Errorf("sync %s: %w", destPath, err)
	}
	if err := tmp.Close(); err != nil {
		staged.discard()
		return stagedFile{}, fmt.Errorf("close %s: %w", destPath, err)
	}
	return staged, nil
}

func (s stagedFile) discard() {
	if s.tmpPath != "" {
		_ = os.Remove(s.tmpPath)
	}
}

func (s stagedFile) commit() error {
	if err := os.Rename(s.tmpPath, s.destPath); err != nil {
		return fmt.Errorf("rename onto %s: %w", s.destPath, err)
	}
	return nil
}

// WriteFrameFile writes one frame to path through a temp file, replacing any existing file.
func WriteFrameFile(frame *dataset.Frame, path string) error {
	staged, err := stageFrame(frame, path)
	if err != nil {
		return pipelineError.Wrap(pipelineError.PersistenceError, err, "persist table")
	}
	if err := staged.commit(); err != nil {
		staged.discard()
		return pipelineError.Wrap(pipelineError.PersistenceError, err, "persist table")
	}
	return nil
}

// PersistPartitions writes both partitions to temp files and renames them only
// after both writes succeeded, so a failed write leaves no half-written pair.
func PersistPartitions(train, test *dataset.Frame, trainPath, testPath string) error {
	trainStaged, err := stageFrame(train, trainPath)
	if err != nil {
		return pipelineError.Wrap(pipelineError.PersistenceError, err, "persist train partition")
	}
	testStaged, err := stageFrame(test, testPath)
	if err != nil {
		trainStaged.discard()
		return pipelineError.Wrap(pipelineError.PersistenceError, err, "persist test partition")
	}

	if err := trainStaged.commit(); err != nil {
		trainStaged.discard()
		testStaged.discard()
		return pipelineError.Wrap(pipelineError.PersistenceError, err, "persist train partition")
	}
	if err := testStaged.commit(); err != nil {
		testStaged.discard()
		return pipelineError.Wrap(pipelineError.PersistenceError, err, "persist test partition")
	}
	return nil
}
