package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// ProofStore conserve les preuves de virement. Save retourne l'emplacement enregistré
// dans bukti_pembayaran ; Remove accepte ce même emplacement.
type ProofStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, location string) error
}

// --- Stockage disque ---

// LocalProofStore écrit les preuves sous <dir>/pembayaran.
type LocalProofStore struct {
	dir string
}

func NewLocalProofStore(uploadDir string) *LocalProofStore {
	return &LocalProofStore{dir: filepath.Join(uploadDir, "pembayaran")}
}

func (s *LocalProofStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("création dossier uploads: %w", err)
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("création fichier preuve: %w", err)
	}

	if _, err := io.Copy(f, io.LimitReader(r, size)); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("écriture fichier preuve: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("fermeture fichier preuve: %w", err)
	}

	return filepath.ToSlash(path), nil
}

func (s *LocalProofStore) Remove(ctx context.Context, location string) error {
	err := os.Remove(filepath.FromSlash(location))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// --- Stockage MinIO ---

// MinioProofStore envoie les preuves dans un bucket ; l'emplacement vaut "<bucket>/<objet>".
type MinioProofStore struct {
	client *minio.Client
	bucket string
}

func NewMinioProofStore(client *minio.Client, bucket string) *MinioProofStore {
	return &MinioProofStore{client: client, bucket: bucket}
}

func (s *MinioProofStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	object := "pembayaran/" + name
	_, err := s.client.PutObject(ctx, s.bucket, object, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload MinIO: %w", err)
	}
	return s.bucket + "/" + object, nil
}

func (s *MinioProofStore) Remove(ctx context.Context, location string) error {
	return s.client.RemoveObject(ctx, s.bucket, s.objectKey(location), minio.RemoveObjectOptions{})
}

// SignedURL génère une URL de lecture temporaire pour la vérification manuelle.
func (s *MinioProofStore) SignedURL(ctx context.Context, location string, duration time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, s.objectKey(location), duration, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *MinioProofStore) objectKey(location string) string {
	return strings.TrimPrefix(location, s.bucket+"/")
}
