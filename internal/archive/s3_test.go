package archive

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewS3RejectsIncompleteConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  S3Config
	}{
		{"missing endpoint", S3Config{AccessKey: "a", SecretKey: "s", Bucket: "b"}},
		{"missing credentials", S3Config{Endpoint: "minio:9000", Bucket: "b"}},
		{"missing bucket", S3Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewS3(tc.cfg)
			require.Error(t, err)
		})
	}
}

func TestS3ConfigEnabled(t *testing.T) {
	require.False(t, S3Config{}.Enabled())
	require.False(t, S3Config{Endpoint: "  "}.Enabled())
	require.True(t, S3Config{Endpoint: "minio:9000"}.Enabled())
}

func TestObjectKey(t *testing.T) {
	require.Equal(t, "acme/api/r1.json", ObjectKey("acme/api", "r1"))
	require.Equal(t, "acme/api/r1.json", ObjectKey(" /acme/api/ ", " r1 "))
}
