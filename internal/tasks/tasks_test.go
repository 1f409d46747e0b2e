package tasks

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngenohkevin/taskrunner/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.LoadWithDefaults()
	cfg.BackupSrc = filepath.Join(base, "src")
	cfg.BackupDir = filepath.Join(base, "backups")
	cfg.ReportDir = filepath.Join(base, "reports")
	cfg.LogDir = filepath.Join(base, "logs")
	require.NoError(t, os.MkdirAll(cfg.BackupSrc, 0755))
	return cfg
}

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog(config.LoadWithDefaults())

	assert.Equal(t, []string{
		"cleanup_logs",
		"daily_backup",
		"docker_prune",
		"generate_report",
		"send_email",
		"service_check",
	}, cat.Names())
}

func TestDailyBackupArchivesSource(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.BackupSrc, "data.txt"), []byte("payload"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.BackupSrc, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.BackupSrc, "nested", "more.txt"), []byte("deep"), 0644))

	task := NewDailyBackup(cfg)
	require.NoError(t, task.Run(context.Background()))

	entries, err := os.ReadDir(cfg.BackupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	found := readArchiveNames(t, filepath.Join(cfg.BackupDir, entries[0].Name()))
	assert.Contains(t, found, "data.txt")
	assert.Contains(t, found, filepath.Join("nested", "more.txt"))
}

func TestDailyBackupSkipsDestination(t *testing.T) {
	cfg := testConfig(t)
	// Destination nested inside the source tree
	cfg.BackupDir = filepath.Join(cfg.BackupSrc, "backups")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.BackupSrc, "data.txt"), []byte("payload"), 0644))

	task := NewDailyBackup(cfg)
	require.NoError(t, task.Run(context.Background()))
	require.NoError(t, task.Run(context.Background()))

	entries, err := os.ReadDir(cfg.BackupDir)
	require.NoError(t, err)
	for _, e := range entries {
		names := readArchiveNames(t, filepath.Join(cfg.BackupDir, e.Name()))
		for _, name := range names {
			assert.NotContains(t, name, "backups/")
		}
	}
}

func readArchiveNames(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	return names
}

func TestGenerateReportWritesJSON(t *testing.T) {
	cfg := testConfig(t)

	task := NewGenerateReport(cfg)
	require.NoError(t, task.Run(context.Background()))

	path := latestReport(cfg.ReportDir)
	require.NotEmpty(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Contains(t, snap, "host")
	assert.Contains(t, snap, "cpu")
	assert.Contains(t, snap, "memory")
}

func TestSendEmailFailsWithoutSMTPHost(t *testing.T) {
	cfg := testConfig(t)
	cfg.SMTPHost = ""

	task := NewSendEmail(cfg)
	err := task.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_HOST not configured")
}

func TestSendEmailFailsWithoutRecipients(t *testing.T) {
	cfg := testConfig(t)
	cfg.SMTPHost = "smtp.example.com"
	cfg.EmailTo = nil

	task := NewSendEmail(cfg)
	err := task.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMAIL_TO")
}

func TestCleanupLogsPrunesOldFiles(t *testing.T) {
	cfg := testConfig(t)
	cfg.RetentionDays = 14
	require.NoError(t, os.MkdirAll(cfg.ReportDir, 0755))
	require.NoError(t, os.MkdirAll(cfg.LogDir, 0755))

	oldFile := filepath.Join(cfg.ReportDir, "report-old.json")
	newFile := filepath.Join(cfg.ReportDir, "report-new.json")
	runLog := filepath.Join(cfg.LogDir, "runner.log")
	require.NoError(t, os.WriteFile(oldFile, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(newFile, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(runLog, []byte("history"), 0644))

	stale := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(oldFile, stale, stale))
	require.NoError(t, os.Chtimes(runLog, stale, stale))

	task := NewCleanupLogs(cfg)
	require.NoError(t, task.Run(context.Background()))

	assert.NoFileExists(t, oldFile)
	assert.FileExists(t, newFile)
	// The run log is append-only history and survives cleanup
	assert.FileExists(t, runLog)
}

func TestCleanupLogsMissingDirsOK(t *testing.T) {
	cfg := testConfig(t)

	task := NewCleanupLogs(cfg)
	assert.NoError(t, task.Run(context.Background()))
}

func TestServiceCheckNoWatchedUnits(t *testing.T) {
	cfg := testConfig(t)
	cfg.WatchedServices = nil

	task := NewServiceCheck(cfg)
	assert.NoError(t, task.Run(context.Background()))
}

func TestReportSummaryWithoutReports(t *testing.T) {
	summary := reportSummary(filepath.Join(t.TempDir(), "nope"))
	assert.Contains(t, summary, "No report")
}
