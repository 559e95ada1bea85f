package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PROOF_STORAGE", "")
	t.Setenv("SCYLLA_HOSTS", "")

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "local", cfg.ProofStorage)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Empty(t, cfg.ScyllaHosts)
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PROOF_STORAGE", "MinIO")
	t.Setenv("SCYLLA_HOSTS", "10.0.0.1, 10.0.0.2,")
	t.Setenv("MINIO_USE_SSL", "TRUE")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("APP_ENV", "development")

	cfg := FromEnv()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "minio", cfg.ProofStorage)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.ScyllaHosts)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.True(t, cfg.IsDevelopment())
}
