package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WritePage writes the front matter followed by body.
func WritePage(w io.Writer, fm *FrontMatter, body string) error {
	header, err := fm.Render()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err = io.WriteString(w, body)
	return err
}

// WriteFile replaces path with the rendered page. The page is written to a
// temporary file in the same directory and renamed over path, so a failed
// write leaves the original untouched.
func WriteFile(path string, fm *FrontMatter, body string) (err error) {
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = WritePage(tmp, fm, body); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
