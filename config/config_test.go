package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `imap:
  server: mail.example.org
  port: 143
  username: cpk
  password: secreta
  tls: false

archive:
  source_folders:
    - INBOX/Processing
    - INBOX/Correspondence
    - INBOX/Notifications
  dest_folder: INBOX/Archive
  batch_size: 33

classifier:
  source_folder: INBOX
  dest_folder_notifications: INBOX/Notifications
  dest_folder_correspondence: INBOX/Correspondence
  command: ["./classify.sh"]

summary:
  source_folder: INBOX
  drafts_folder: INBOX/Drafts
  batch_size: 50

logs:
  transaction: archive_transaction_log.json
  recovery: archive_recovery_log.json
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "mail.example.org", cfg.IMAP.Server)
	assert.Equal(t, 143, cfg.IMAP.Port)
	assert.False(t, cfg.IMAP.TLS)

	assert.Equal(t, []string{"INBOX/Processing", "INBOX/Correspondence", "INBOX/Notifications"}, cfg.Archive.SourceFolders)
	assert.Equal(t, "INBOX/Archive", cfg.Archive.DestFolder)
	assert.Equal(t, uint32(33), cfg.Archive.BatchSize)

	assert.Equal(t, "INBOX", cfg.Classifier.SourceFolder)
	assert.Equal(t, []string{"./classify.sh"}, cfg.Classifier.Command)

	assert.Equal(t, "INBOX/Drafts", cfg.Summary.DraftsFolder)
	assert.Equal(t, uint32(50), cfg.Summary.BatchSize)

	assert.Equal(t, "archive_transaction_log.json", cfg.Logs.Transaction)
	assert.Same(t, cfg, GetConfig())
}

func TestLoadConfig_Defaults(t *testing.T) {
	minimal := `imap:
  server: mail.example.org
  port: 993
  username: cpk
  password: secreta
  tls: true

archive:
  source_folders: [INBOX/Processing]
  dest_folder: INBOX/Archive
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(33), cfg.Archive.BatchSize)
	assert.Equal(t, "INBOX", cfg.Summary.SourceFolder)
	assert.Equal(t, "Drafts", cfg.Summary.DraftsFolder)
	assert.Equal(t, uint32(33), cfg.Summary.BatchSize)
	assert.Equal(t, "archive_transaction_log.json", cfg.Logs.Transaction)
	assert.Equal(t, "archive_recovery_log.json", cfg.Logs.Recovery)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "inexistente.yaml"))
	assert.Error(t, err)
}
