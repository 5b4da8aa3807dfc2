package feature

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrOutputConflict marks a support asset that already exists at the
// destination. Existing files are never replaced so viewer edits survive.
var ErrOutputConflict = errors.New("output already exists")

// SupportAssets are copied from the support directory into the map directory.
var SupportAssets = []string{"index.html", "full.html", "lib"}

// CopySupport copies every support asset that is not yet present in dst and
// returns the conflicts it skipped.
func CopySupport(src, dst string, log logrus.FieldLogger) ([]error, error) {
	var conflicts []error
	for _, name := range SupportAssets {
		to := filepath.Join(dst, name)
		if _, err := os.Stat(to); err == nil {
			conflict := errors.Wrapf(ErrOutputConflict, "'%s'", to)
			log.WithField("path", to).Warn("already exists will not over-write")
			conflicts = append(conflicts, conflict)
			continue
		}

		from := filepath.Join(src, name)
		info, err := os.Stat(from)
		if err != nil {
			return conflicts, errors.Wrapf(err, "support asset '%s'", from)
		}
		if info.IsDir() {
			err = copyDir(from, to)
		} else {
			err = copyFile(from, to)
		}
		if err != nil {
			return conflicts, err
		}
		log.WithField("path", to).Info("copied support asset")
	}
	return conflicts, nil
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		to := filepath.Join(dst, rel)
		if e.IsDir() {
			return os.MkdirAll(to, os.ModePerm)
		}
		return copyFile(path, to)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "os.Open('%s')", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "os.Create('%s')", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "copy '%s'", src)
	}
	return out.Close()
}
