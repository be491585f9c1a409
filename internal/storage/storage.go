package storage

import (
	"fmt"
	"image"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif" // register gif
	"image/jpeg"
	_ "image/png" // register png

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// Store keeps uploaded files on local disk under a configured root:
// kyc/ for identity documents and profiles/ for avatar images.
type Store struct {
	root string
}

func New(root string) (*Store, error) {
	for _, sub := range []string{"kyc", "profiles"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	return &Store{root: root}, nil
}

var kycExts = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// SaveKYC writes an identity document under a random name and returns the
// path relative to the upload root.
func (s *Store) SaveKYC(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !kycExts[ext] {
		return "", fmt.Errorf("unsupported document type %q", ext)
	}

	name := uuid.NewString() + ext
	rel := filepath.Join("kyc", name)
	out, err := os.Create(filepath.Join(s.root, rel))
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}
	return rel, nil
}

// SaveProfileImage decodes, resizes and recompresses an avatar upload. The
// stored file is always a JPEG regardless of the uploaded format.
func (s *Store) SaveProfileImage(file multipart.File) (string, error) {
	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	rel := filepath.Join("profiles", uuid.NewString()+".jpg")
	if err := compressAndSave(img, filepath.Join(s.root, rel), 256, 256, 80); err != nil {
		return "", err
	}
	return rel, nil
}

func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Open resolves a stored path for serving. The rel path is cleaned so a
// crafted value cannot escape the upload root.
func (s *Store) Open(rel string) (*os.File, error) {
	clean := filepath.Clean("/" + rel)
	return os.Open(filepath.Join(s.root, clean))
}

func compressAndSave(img image.Image, savePath string, width, height, quality int) error {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	out, err := os.Create(savePath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			log.Printf("[WARN] Failed to close file -> path=%s, err=%v", savePath, cerr)
		}
	}()

	opts := &jpeg.Options{Quality: quality}
	if err := jpeg.Encode(out, dst, opts); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}
