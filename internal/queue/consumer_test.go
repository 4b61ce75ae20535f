package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes into dir for the duration of the test. It stands in for
// t.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestHandleMessage_UnlinksImageAndWritesAudit(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	img := filepath.Join(dir, "place.jpg")
	require.NoError(t, os.WriteFile(img, []byte("jpeg bytes"), 0o644))

	body, err := json.Marshal(PlaceDeletedEvent{
		PlaceID:   7,
		CreatorID: 3,
		Title:     "Empire State Building",
		ImagePath: img,
		DeletedAt: "2024-01-02T03:04:05Z",
	})
	require.NoError(t, err)

	require.NoError(t, handleMessage(body))

	_, statErr := os.Stat(img)
	assert.True(t, os.IsNotExist(statErr), "image file should be unlinked")

	audit, err := os.ReadFile(filepath.Join(dir, "logs", "cleanup.log"))
	require.NoError(t, err)
	assert.Contains(t, string(audit), "place_id=7")
	assert.Contains(t, string(audit), "Empire State Building")
}

// A missing image file is not an error: the cleanup already happened or
// the place never had one.
func TestHandleMessage_MissingImageIsFine(t *testing.T) {
	chdir(t, t.TempDir())

	body, err := json.Marshal(PlaceDeletedEvent{
		PlaceID:   8,
		ImagePath: "does/not/exist.jpg",
		DeletedAt: "2024-01-02T03:04:05Z",
	})
	require.NoError(t, err)

	assert.NoError(t, handleMessage(body))
}

func TestHandleMessage_RejectsGarbage(t *testing.T) {
	chdir(t, t.TempDir())

	assert.Error(t, handleMessage([]byte("not json")))
}
