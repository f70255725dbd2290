package s3backup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportKey(t *testing.T) {
	at := time.Date(2024, 6, 1, 23, 30, 0, 0, time.FixedZone("WAT", 3600))
	assert.Equal(t, "reports/2024/06/42.pdf", ReportKey(42, at))

	id := time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, "reports/2023/12/1704024000000.pdf", ReportKey(id, time.Time{}))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("S3_BACKUP_ENABLED", "false")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.IsEnabled())

	t.Setenv("S3_BACKUP_ENABLED", "true")
	t.Setenv("S3_ACCESS_KEY_ID", "key")
	t.Setenv("S3_SECRET_ACCESS_KEY", "")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "S3_SECRET_ACCESS_KEY")

	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("S3_BUCKET_NAME", "caps")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "caps", cfg.BucketName)
}
