package download

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "graphmine/pkg/errors"
)

// IsArchive reports whether the file name has an extension the extractor
// understands.
func IsArchive(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".zip") ||
		strings.HasSuffix(lower, ".tar.gz") ||
		strings.HasSuffix(lower, ".tgz") ||
		strings.HasSuffix(lower, ".gz")
}

// Extract unpacks an archive into destDir and returns the paths of the files
// it wrote. The format is chosen by extension; unknown extensions yield a
// typed error.
func Extract(archivePath, destDir string) ([]string, error) {
	lower := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return extractZip(archivePath, destDir)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return extractTarGz(archivePath, destDir)
	case strings.HasSuffix(lower, ".gz"):
		return extractGz(archivePath, destDir)
	default:
		return nil, pkgerrors.NewUnsupportedArchive(archivePath)
	}
}

// securePath joins name under destDir and rejects entries that would escape
// it (zip-slip).
func securePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.Clean("/"+name))
	rel, err := filepath.Rel(destDir, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", pkgerrors.NewUnsupportedArchive(name)
	}
	return target, nil
}

func extractZip(archivePath, destDir string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, pkgerrors.NewDownloadFailed(archivePath, 0, fmt.Errorf("open zip: %w", err))
	}
	defer reader.Close()

	var outputs []string
	for _, file := range reader.File {
		target, err := securePath(destDir, file.Name)
		if err != nil {
			return nil, err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, pkgerrors.NewDownloadFailed(archivePath, 0, err)
			}
			continue
		}
		src, err := file.Open()
		if err != nil {
			return nil, pkgerrors.NewDownloadFailed(archivePath, 0, err)
		}
		if err := writeFile(target, src); err != nil {
			src.Close()
			return nil, pkgerrors.NewDownloadFailed(archivePath, 0, err)
		}
		src.Close()
		outputs = append(outputs, target)
	}
	return outputs, nil
}

func extractTarGz(archivePath, destDir string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, pkgerrors.NewDownloadFailed(archivePath, 0, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, pkgerrors.NewDownloadFailed(archivePath, 0, fmt.Errorf("open gzip: %w", err))
	}
	defer gz.Close()

	var outputs []string
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return outputs, nil
		}
		if err != nil {
			return nil, pkgerrors.NewDownloadFailed(archivePath, 0, err)
		}

		target, err := securePath(destDir, header.Name)
		if err != nil {
			return nil, err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, pkgerrors.NewDownloadFailed(archivePath, 0, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr); err != nil {
				return nil, pkgerrors.NewDownloadFailed(archivePath, 0, err)
			}
			outputs = append(outputs, target)
		}
	}
}

func extractGz(archivePath, destDir string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, pkgerrors.NewDownloadFailed(archivePath, 0, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, pkgerrors.NewDownloadFailed(archivePath, 0, fmt.Errorf("open gzip: %w", err))
	}
	defer gz.Close()

	base := strings.TrimSuffix(filepath.Base(archivePath), ".gz")
	target := filepath.Join(destDir, base)
	if err := writeFile(target, gz); err != nil {
		return nil, pkgerrors.NewDownloadFailed(archivePath, 0, err)
	}
	return []string{target}, nil
}

func writeFile(target string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	return err
}
