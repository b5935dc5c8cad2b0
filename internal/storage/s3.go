// Package storage delivers final artifacts to S3, optionally encrypted
// with a passphrase.
package storage

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/pbkdf2"
)

// gcmMagic marks passphrase-encrypted artifacts.
// Format: magic(8) + salt(16) + nonce(12) + ciphertext-with-tag.
const gcmMagic = "GCM3NCR0"

const (
	pbkdf2Iterations = 100000
	saltLen          = 16
)

// S3Client uploads artifacts to one bucket.
type S3Client struct {
	uploader *manager.Uploader
	bucket   string
}

// NewS3Client creates an S3 client for bucket using the default AWS
// credential chain.
func NewS3Client(ctx context.Context, bucket string) (*S3Client, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	cli := s3.NewFromConfig(cfg)
	return &S3Client{uploader: manager.NewUploader(cli), bucket: bucket}, nil
}

// ParseURL splits an s3://bucket/prefix URL.
func ParseURL(s3url string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(s3url, "s3://") {
		return "", "", fmt.Errorf("not an s3 url: %s", s3url)
	}
	rest := strings.TrimPrefix(s3url, "s3://")
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return rest, "", nil
	}
	if slash == 0 {
		return "", "", fmt.Errorf("invalid s3 url: %s", s3url)
	}
	return rest[:slash], strings.Trim(rest[slash+1:], "/"), nil
}

// UploadFile uploads the file at localPath under prefix, keeping its
// base name. With a non-empty password the payload is encrypted with
// AES-GCM using a PBKDF2-derived key. Returns the object's s3 URL.
func (s *S3Client) UploadFile(ctx context.Context, prefix, localPath, password string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("read artifact: %w", err)
	}
	encrypted := false
	if password != "" {
		data, err = encryptGCM(data, password)
		if err != nil {
			return "", fmt.Errorf("encrypt artifact: %w", err)
		}
		encrypted = true
	}

	key := path.Join(prefix, path.Base(localPath))
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	log.Info().Str("bucket", s.bucket).Str("key", key).Bool("encrypted", encrypted).
		Int("bytes", len(data)).Msg("uploaded artifact")
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// encryptGCM encrypts data with AES-256-GCM under a PBKDF2 key.
func encryptGCM(data []byte, password string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, 32, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(gcmMagic)+len(salt)+len(nonce)+len(data)+gcm.Overhead())
	out = append(out, gcmMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, data, nil), nil
}

// decryptGCM reverses encryptGCM.
func decryptGCM(data []byte, password string) ([]byte, error) {
	min := len(gcmMagic) + saltLen + 12 + 16
	if len(data) < min {
		return nil, fmt.Errorf("encrypted payload too short: %d bytes", len(data))
	}
	if string(data[:len(gcmMagic)]) != gcmMagic {
		return nil, fmt.Errorf("unknown encryption format")
	}
	salt := data[len(gcmMagic) : len(gcmMagic)+saltLen]
	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, 32, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	rest := data[len(gcmMagic)+saltLen:]
	nonce := rest[:gcm.NonceSize()]
	plaintext, err := gcm.Open(nil, nonce, rest[gcm.NonceSize():], nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}
