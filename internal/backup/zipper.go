package backup

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// zipTree writes every regular file under root into a zip archive at
// dest, with entry names relative to root. Returns the number of files
// archived. The partially written archive is removed on failure.
func zipTree(root, dest string) (int, error) {
	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}

	zw := zip.NewWriter(out)
	count := 0

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		hdr.Method = zip.Deflate

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		if _, err := io.Copy(w, f); err != nil {
			return err
		}

		count++
		return nil
	})

	if err == nil {
		err = zw.Close()
	} else {
		zw.Close()
	}

	if cerr := out.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		os.Remove(dest)
		return 0, err
	}

	return count, nil
}
