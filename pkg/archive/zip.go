package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Create compresses every file under projectDir into a dated archive
// below root: <root>/<YYYY>/<MM>/<DD>/<project>_<stamp>.zip.
// Entry names are relative to projectDir's parent so the top-level
// project folder name is preserved inside the archive.
// It returns the archive path and its size in bytes.
func Create(projectDir, root, project string, now time.Time) (string, int64, error) {
	dateDir := filepath.Join(root, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return "", 0, fmt.Errorf("archive: create date folder: %w", err)
	}

	zipPath := filepath.Join(dateDir, Name(project, now))
	fi, err := os.Create(zipPath)
	if err != nil {
		return "", 0, fmt.Errorf("archive: create file: %w", err)
	}
	defer fi.Close()

	cw := &countingWriter{w: fi}
	if err := compressDir(projectDir, cw); err != nil {
		return "", 0, fmt.Errorf("archive: compress %s: %w", projectDir, err)
	}

	if err := fi.Close(); err != nil {
		return "", 0, err
	}
	return zipPath, cw.total, nil
}

// compressDir writes a zip of every regular file under src to w.
func compressDir(src string, w io.Writer) error {
	// Entries are named relative to the parent so that unpacking
	// recreates the project folder itself.
	base := filepath.Dir(filepath.Clean(src))

	zw := zip.NewWriter(w)

	walker := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}

		fi, err := os.Open(path)
		if err != nil {
			return err
		}
		defer fi.Close()

		fw, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}

		_, err = io.Copy(fw, fi)
		return err
	}

	if err := filepath.Walk(src, walker); err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}

// countingWriter wraps a writer and counts the bytes written through it.
type countingWriter struct {
	w     io.Writer
	total int64
}

func (cw *countingWriter) Write(buf []byte) (int, error) {
	n, err := cw.w.Write(buf)
	cw.total += int64(n)
	return n, err
}
