package rotation

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SohamA2002/Automated-Backup/pkg/archive"
)

// Record describes one archive found on storage. Records are built fresh
// on every pass and discarded afterwards.
type Record struct {
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
}

// Repository enumerates and removes archives. The filesystem is the only
// backing store today; the interface exists so an index file or embedded
// database could replace it without touching classification.
type Repository interface {
	List() ([]Record, error)
	Delete(path string) error
}

// FSRepository reads the archive population straight from the dated
// directory tree under Root. Metadata lives only in file names.
type FSRepository struct {
	Root string
}

// NewFSRepository returns a Repository over the archive tree at root.
func NewFSRepository(root string) *FSRepository {
	return &FSRepository{Root: root}
}

// List walks Root recursively and returns a Record for every file whose
// name carries a parseable archive timestamp. Foreign files and files
// with unreadable metadata are skipped, never reported as errors.
func (r *FSRepository) List() ([]Record, error) {
	var records []Record

	walker := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable entries must not abort the pass.
			return nil
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), archive.Ext) {
			return nil
		}
		createdAt, err := archive.ParseName(info.Name())
		if err != nil {
			return nil
		}
		records = append(records, Record{
			Path:      path,
			CreatedAt: createdAt,
			Size:      info.Size(),
		})
		return nil
	}

	if err := filepath.Walk(r.Root, walker); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

// Delete removes one archive file.
func (r *FSRepository) Delete(path string) error {
	return os.Remove(path)
}
