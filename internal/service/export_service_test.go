package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lingo_backend/internal/config"
	"lingo_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportProgress(t *testing.T) {
	env := newTestEnv(t)
	user, _ := seedScenario(t, env)
	svc := NewExportService(env.progress, env.rules, localStorage(t))

	data, err := svc.ExportProgress(context.Background(), user.ID)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	history, err := f.GetRows(historySheet)
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, "Completed At", history[0][0])
	assert.Equal(t, "grammar", history[1][1])
	assert.Equal(t, "grammar drill", history[1][2])
	assert.Equal(t, "18", history[1][6])

	daily, err := f.GetRows(dailySheet)
	require.NoError(t, err)
	require.Len(t, daily, 4)
	assert.Equal(t, []string{"2026-03-10", "2", "38", "80"}, daily[1])
}

func TestExportProgress_Empty(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")

	data, err := NewExportService(env.progress, env.rules, localStorage(t)).ExportProgress(context.Background(), user.ID)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(historySheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func localStorage(t *testing.T) *StorageService {
	return NewStorageService(&config.StorageConfig{Type: StorageLocal, LocalPath: t.TempDir()})
}

type failingStorage struct{}

func (failingStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	return "", errors.New("bucket unreachable")
}

func (failingStorage) Delete(ctx context.Context, key string) error { return nil }

func (failingStorage) Name() string { return "failing" }

func TestArchiveProgress(t *testing.T) {
	env := newTestEnv(t)
	user, _ := seedScenario(t, env)

	root := t.TempDir()
	svc := NewExportService(env.progress, env.rules, NewStorageService(&config.StorageConfig{Type: StorageLocal, LocalPath: root}))
	svc.now = func() time.Time { return time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC) }

	archive, err := svc.ArchiveProgress(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, StorageLocal, archive.Backend)
	assert.True(t, strings.HasPrefix(archive.Key, "exports/"+user.ID+"/"))
	assert.True(t, strings.HasSuffix(archive.Key, "progress-20260316.xlsx"))
	assert.Equal(t, "/uploads/"+archive.Key, archive.URL)

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(archive.Key)))
	require.NoError(t, err)
	assert.Len(t, data, archive.Size)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(historySheet)
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	require.NoError(t, svc.Storage.Delete(context.Background(), archive.Key))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(archive.Key)))
	assert.True(t, os.IsNotExist(err))
}

func TestArchiveProgress_StorageFailure(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")

	svc := NewExportService(env.progress, env.rules, &StorageService{Provider: failingStorage{}})
	_, err := svc.ArchiveProgress(context.Background(), user.ID)
	require.Error(t, err)
	assert.Equal(t, util.KindUpstream, util.KindOf(err))
}

func TestNewStorageService_FallsBackToLocal(t *testing.T) {
	svc := NewStorageService(&config.StorageConfig{Type: StorageMinio, MinioEndpoint: "http://bad endpoint", LocalPath: t.TempDir()})
	assert.Equal(t, StorageLocal, svc.Provider.Name())

	svc = NewStorageService(&config.StorageConfig{Type: "", LocalPath: t.TempDir()})
	assert.Equal(t, StorageLocal, svc.Provider.Name())
}
