package configpkg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, StorePostgres, c.StoreDriver)
	require.Equal(t, 5*time.Second, c.StoreTimeout)
	require.Equal(t, uint64(3), c.UpstreamMaxRetries)
	require.Equal(t, "Admin", c.AuditActor)
	require.Equal(t, uint64(5), c.AuditMaxRetries)
	require.Equal(t, 200*time.Millisecond, c.AuditBackoff)
	require.Empty(t, c.Brokers())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()

	appEnv := "STORE_DRIVER=memory\nSTORE_TIMEOUT=2s\nKAFKA_BROKERS=kafka-1:9092, kafka-2:9092\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(appEnv), 0o600))

	t.Setenv("UPSTREAM_MAX_RETRIES", "7")

	c, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, StoreMemory, c.StoreDriver)
	require.Equal(t, 2*time.Second, c.StoreTimeout)
	require.Equal(t, uint64(7), c.UpstreamMaxRetries)

	want := []string{"kafka-1:9092", "kafka-2:9092"}
	if diff := cmp.Diff(want, c.Brokers()); diff != "" {
		t.Errorf("Brokers() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadLocalOverrides(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte("AUDIT_ACTOR=Admin\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("AUDIT_ACTOR=Operator\n"), 0o600))

	// godotenv exports into the process environment.
	t.Cleanup(func() { os.Unsetenv("AUDIT_ACTOR") })

	c, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "Operator", c.AuditActor)
}
