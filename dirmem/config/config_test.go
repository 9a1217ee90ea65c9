package config

import (
	"os"
	"path/filepath"
	"testing"

	internal "github.com/ZanzyTHEbar/dirmem/dirmem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	suite.tempDir = suite.T().TempDir()

	// Isolate from any config.yaml next to the package sources
	err = os.Chdir(suite.tempDir)
	require.NoError(suite.T(), err)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configContent := `
memory:
  documentDir: "/srv/memory"
  documentFile: "tree.json"
  backupSuffix: ".old"
snapshot:
  ignoreFile: ".treeignore"
query:
  marker: "Pregunta:"
server:
  name: "filesystem_pro"
  version: "9.9.9"
files:
  maxConcurrency: 8
log:
  level: "debug"
`
	configFile := filepath.Join(suite.tempDir, "config.yaml")
	err := os.WriteFile(configFile, []byte(configContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), "/srv/memory", cfg.Memory.DocumentDir)
	assert.Equal(suite.T(), "tree.json", cfg.Memory.DocumentFile)
	assert.Equal(suite.T(), ".old", cfg.Memory.BackupSuffix)
	assert.Equal(suite.T(), ".treeignore", cfg.Snapshot.IgnoreFile)
	assert.Equal(suite.T(), "Pregunta:", cfg.Query.Marker)
	assert.Equal(suite.T(), "filesystem_pro", cfg.Server.Name)
	assert.Equal(suite.T(), "9.9.9", cfg.Server.Version)
	assert.Equal(suite.T(), 8, cfg.Files.MaxConcurrency)
	assert.Equal(suite.T(), "debug", cfg.Log.Level)
	assert.Equal(suite.T(), filepath.Join("/srv/memory", "tree.json"), cfg.DocumentPath())
}

func (suite *ConfigTestSuite) TestLoadConfigPartialFileKeepsDefaults() {
	configFile := filepath.Join(suite.tempDir, "partial.yaml")
	err := os.WriteFile(configFile, []byte("query:\n  marker: \"Q:\"\n"), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "Q:", cfg.Query.Marker)
	assert.Equal(suite.T(), internal.DefaultDocumentFile, cfg.Memory.DocumentFile)
	assert.Equal(suite.T(), internal.DefaultBackupSuffix, cfg.Memory.BackupSuffix)
	assert.Equal(suite.T(), internal.DefaultFileReadWorkers, cfg.Files.MaxConcurrency)
}

func (suite *ConfigTestSuite) TestLoadConfigEnvironmentOverride() {
	suite.T().Setenv("DIRMEM_QUERY_MARKER", "Ask:")

	configFile := filepath.Join(suite.tempDir, "config.yaml")
	require.NoError(suite.T(), os.WriteFile(configFile, []byte("log:\n  level: warn\n"), 0o644))

	cfg, err := LoadConfig(configFile)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "Ask:", cfg.Query.Marker)
	assert.Equal(suite.T(), "warn", cfg.Log.Level)
}

func (suite *ConfigTestSuite) TestLoadConfigClampsConcurrency() {
	configFile := filepath.Join(suite.tempDir, "config.yaml")
	require.NoError(suite.T(), os.WriteFile(configFile, []byte("files:\n  maxConcurrency: 0\n"), 0o644))

	cfg, err := LoadConfig(configFile)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, cfg.Files.MaxConcurrency)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidFile() {
	configFile := filepath.Join(suite.tempDir, "broken.yaml")
	require.NoError(suite.T(), os.WriteFile(configFile, []byte("memory: [unterminated"), 0o644))

	cfg, err := LoadConfig(configFile)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestLoadConfigMissingExplicitFile() {
	cfg, err := LoadConfig(filepath.Join(suite.tempDir, "does-not-exist.yaml"))
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestDefault() {
	cfg := Default()

	assert.Equal(suite.T(), internal.DefaultDocumentDir, cfg.Memory.DocumentDir)
	assert.Equal(suite.T(), internal.DefaultQueryMarker, cfg.Query.Marker)
	assert.Equal(suite.T(), internal.DefaultAppName, cfg.Server.Name)
	assert.Equal(suite.T(), filepath.Join(internal.DefaultDocumentDir, internal.DefaultDocumentFile), cfg.DocumentPath())
}
