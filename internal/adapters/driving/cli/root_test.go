package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "animerec", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"verbose", "json-logs", "config-dir", "env-file"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "v", rootCmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestRootCmd_Help(t *testing.T) {
	out, err := executeCommand(t, "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "animerec build")
	assert.Contains(t, out, "recommend")
}

func TestGetServices_NotConfigured(t *testing.T) {
	original := bootstrap
	bootstrap = nil
	t.Cleanup(func() { bootstrap = original })

	_, err := getServices()

	assert.ErrorIs(t, err, ErrServicesNotConfigured)
}

func TestGetServices_BootstrapOnce(t *testing.T) {
	calls := 0
	var got Options
	svc := &mockServices{settings: testSettings()}
	SetBootstrap(func(opts Options) (Services, error) {
		calls++
		got = opts
		return svc, nil
	})
	t.Cleanup(func() {
		SetBootstrap(nil)
		services = nil
	})

	_, err := executeCommand(t, "--config-dir", "/tmp/animerec-test", "settings", "keys")
	require.NoError(t, err)

	s, err := getServices()
	require.NoError(t, err)
	assert.Same(t, svc, s)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "/tmp/animerec-test", got.ConfigDir)
}

func TestGetServices_BootstrapError(t *testing.T) {
	boom := errors.New("config unreadable")
	SetBootstrap(func(Options) (Services, error) { return nil, boom })
	t.Cleanup(func() { SetBootstrap(nil) })

	_, err := executeCommand(t, "settings", "show")

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, services)
}

func TestLoadEnvFile_Explicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ANIMEREC_TEST_ENV_KEY=from-file\n"), 0o600))
	t.Setenv("ANIMEREC_TEST_ENV_KEY", "")
	require.NoError(t, os.Unsetenv("ANIMEREC_TEST_ENV_KEY"))

	require.NoError(t, loadEnvFile(path))

	assert.Equal(t, "from-file", os.Getenv("ANIMEREC_TEST_ENV_KEY"))
}

func TestLoadEnvFile_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ANIMEREC_TEST_ENV_KEY=from-file\n"), 0o600))
	t.Setenv("ANIMEREC_TEST_ENV_KEY", "from-shell")

	require.NoError(t, loadEnvFile(path))

	assert.Equal(t, "from-shell", os.Getenv("ANIMEREC_TEST_ENV_KEY"))
}

func TestLoadEnvFile_MissingExplicitFails(t *testing.T) {
	err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env"))

	assert.Error(t, err)
}

func TestLoadEnvFile_MissingDefaultIgnored(t *testing.T) {
	t.Chdir(t.TempDir())

	assert.NoError(t, loadEnvFile(""))
}

func TestExecute_ClosesServices(t *testing.T) {
	svc := &mockServices{}
	withServices(t, svc)
	rootCmd.SetArgs([]string{"version"})
	rootCmd.SetOut(io.Discard)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	require.NoError(t, Execute(t.Context()))

	assert.True(t, svc.closed)
}
