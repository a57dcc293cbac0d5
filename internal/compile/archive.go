package compile

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ArchiveService packs the markup as main.tex into a gzipped tarball and uploads it
// as a multipart form. The working directory lives only for one Compile call.
type ArchiveService struct {
	baseService
	TempRoot string
}

func (s *ArchiveService) Compile(ctx context.Context, markup string) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	workDir, err := os.MkdirTemp(s.TempRoot, "latex-archive-*")
	if err != nil {
		return nil, s.fail("failed to create temporary working directory", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	texPath := filepath.Join(workDir, "main.tex")
	if err := os.WriteFile(texPath, []byte(markup), 0o600); err != nil {
		return nil, s.fail("failed to write main.tex", err)
	}

	archivePath := filepath.Join(workDir, uuid.NewString()+".tar.gz")
	if err := writeTarball(archivePath, texPath); err != nil {
		return nil, s.fail("failed to build archive", err)
	}

	body, contentType, err := multipartFile(archivePath)
	if err != nil {
		return nil, s.fail("failed to build upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
	if err != nil {
		return nil, s.fail("failed to build request", err)
	}
	req.Header.Set("Content-Type", contentType)

	v, err := s.do(req)
	if err != nil {
		return nil, err
	}
	return s.document(v)
}

func writeTarball(archivePath, texPath string) (err error) {
	out, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	content, err := os.ReadFile(texPath)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)
	hdr := &tar.Header{
		Name:    filepath.Base(texPath),
		Mode:    0o644,
		Size:    int64(len(content)),
		ModTime: time.Unix(0, 0),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if _, err := tw.Write(content); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func multipartFile(path string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
