package iconize

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FolderIcon/internal/config"
	"FolderIcon/internal/domain/model"
	"FolderIcon/internal/infrastructure/filesystem"
	"FolderIcon/internal/infrastructure/logging"
	"FolderIcon/internal/infrastructure/platform"
	"FolderIcon/internal/usecase/report"
)

const (
	testRoot     = "/data"
	testCacheDir = "/profile/Explorer"
)

// recordingController は属性の状態を記録し、failPaths のパスでは失敗します
type recordingController struct {
	hidden    map[string]bool
	calls     int
	failPaths map[string]bool
}

func newRecordingController() *recordingController {
	return &recordingController{hidden: map[string]bool{}, failPaths: map[string]bool{}}
}

func (r *recordingController) SetHidden(_ context.Context, path string, hidden bool) error {
	r.calls++
	if r.failPaths[path] {
		return errors.New("exit status 1")
	}
	r.hidden[path] = hidden
	return nil
}

type fakePlatform struct {
	attributes platform.AttributeController
	cacheDir   string
	cacheErr   error
}

func (f *fakePlatform) Attributes() platform.AttributeController { return f.attributes }
func (f *fakePlatform) IconCacheDir() (string, error)            { return f.cacheDir, f.cacheErr }

type fixture struct {
	fs         afero.Fs
	controller *recordingController
	platform   *fakePlatform
	out        *strings.Builder
	processor  *Processor
}

func newFixture(t *testing.T, cfg config.Config, files ...string) *fixture {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(testRoot, 0755))
	require.NoError(t, fs.MkdirAll(testCacheDir, 0755))
	for _, f := range files {
		path := filepath.Join(testRoot, filepath.FromSlash(f))
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte("x"), 0644))
	}

	controller := newRecordingController()
	plat := &fakePlatform{attributes: controller, cacheDir: testCacheDir}
	out := &strings.Builder{}
	processor, err := NewProcessor(cfg, fs, plat, report.NewGenerator(out), logging.Discard)
	require.NoError(t, err)

	return &fixture{fs: fs, controller: controller, platform: plat, out: out, processor: processor}
}

func (f *fixture) exists(t *testing.T, rel string) bool {
	t.Helper()
	ok, err := afero.Exists(f.fs, filepath.Join(testRoot, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return ok
}

func path(rel string) string {
	return filepath.Join(testRoot, filepath.FromSlash(rel))
}

func TestProcessor_RunSingleMarker(t *testing.T) {
	f := newFixture(t, config.Default(), "A/B_icon.ico")
	require.NoError(t, afero.WriteFile(f.fs, filepath.Join(testCacheDir, "iconcache_32.db"), []byte("x"), 0644))

	stats, err := f.processor.Run(context.Background(), testRoot)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DescriptorsCreated)
	assert.Equal(t, 1, stats.FoldersQualified)
	assert.GreaterOrEqual(t, stats.Hidden, 2)
	assert.Equal(t, 1, stats.Unhidden)
	assert.Equal(t, 2, stats.HiddenAtEnd)
	assert.Equal(t, 1, stats.CacheFilesDeleted)
	assert.Zero(t, stats.ToggleFailures)

	assert.True(t, f.exists(t, "A/desktop.ini"))
	assert.True(t, f.controller.hidden[path("A/desktop.ini")])
	assert.True(t, f.controller.hidden[path("A/B_icon.ico")])

	content, err := afero.ReadFile(f.fs, path("A/desktop.ini"))
	require.NoError(t, err)
	assert.Equal(t, filesystem.RenderDescriptor("B_icon.ico"), string(content))

	output := f.out.String()
	assert.Contains(t, output, "1 A - B_icon.ico")
	assert.Contains(t, output, "作成した desktop.ini: 1")
	assert.Contains(t, output, "アイコンキャッシュを 1 件削除しました。")
}

func TestProcessor_PatternPruning(t *testing.T) {
	cfg := config.Default()
	cfg.FolderPatterns = []string{"*/Temp/*"}
	f := newFixture(t, cfg, "Temp/icon_icon.ico", "Temp/Nested/n_icon.ico")

	var stats model.RunStats
	folders, err := f.processor.Process(context.Background(), testRoot, &stats)
	require.NoError(t, err)

	assert.Empty(t, folders)
	assert.Zero(t, stats.DescriptorsCreated)
	assert.Equal(t, 1, stats.FoldersVisited, "Temp に降りています")
	assert.False(t, f.exists(t, "Temp/desktop.ini"))
	assert.False(t, f.exists(t, "Temp/Nested/desktop.ini"))
}

func TestProcessor_DepthBound(t *testing.T) {
	cfg := config.Default()
	cfg.Depth = 1
	f := newFixture(t, cfg, "root_icon.ico", "A/a_icon.ico", "A/B/b_icon.ico", "A/B/C/c_icon.ico")

	var stats model.RunStats
	folders, err := f.processor.Process(context.Background(), testRoot, &stats)
	require.NoError(t, err)

	require.Len(t, folders, 2)
	assert.Equal(t, 0, folders[0].Depth)
	assert.Equal(t, 1, folders[1].Depth)
	assert.True(t, f.exists(t, "desktop.ini"))
	assert.True(t, f.exists(t, "A/desktop.ini"))
	assert.False(t, f.exists(t, "A/B/desktop.ini"))
	assert.False(t, f.exists(t, "A/B/C/desktop.ini"))

	// 深さ制限を超えたフォルダも走査自体は行う
	assert.Equal(t, 4, stats.FoldersVisited)
	// 深さ制限を超えたマーカーは隠さない
	_, touched := f.controller.hidden[path("A/B/b_icon.ico")]
	assert.False(t, touched)
}

func TestProcessor_Idempotent(t *testing.T) {
	f := newFixture(t, config.Default(), "A/a_icon.ico", "B/b_icon.ico")

	var first model.RunStats
	_, err := f.processor.Process(context.Background(), testRoot, &first)
	require.NoError(t, err)
	assert.Equal(t, 2, first.DescriptorsCreated)

	var second model.RunStats
	_, err = f.processor.Process(context.Background(), testRoot, &second)
	require.NoError(t, err)
	assert.Zero(t, second.DescriptorsCreated)
	assert.Equal(t, 2, second.DescriptorsExisting)
}

func TestProcessor_ExistingDescriptorUntouched(t *testing.T) {
	f := newFixture(t, config.Default(), "A/a_icon.ico")
	original := "[.ShellClassInfo]\nIconResource=other.ico,0\n"
	require.NoError(t, afero.WriteFile(f.fs, path("A/desktop.ini"), []byte(original), 0644))

	stats, err := f.processor.Run(context.Background(), testRoot)
	require.NoError(t, err)

	assert.Zero(t, stats.DescriptorsCreated)
	assert.Equal(t, 1, stats.DescriptorsExisting)
	content, err := afero.ReadFile(f.fs, path("A/desktop.ini"))
	require.NoError(t, err)
	assert.Equal(t, original, string(content))
}

func TestProcessor_MultipleMarkersUseFirst(t *testing.T) {
	f := newFixture(t, config.Default(), "A/z_icon.ico", "A/b_icon.ico")

	var stats model.RunStats
	folders, err := f.processor.Process(context.Background(), testRoot, &stats)
	require.NoError(t, err)

	require.Len(t, folders, 1)
	assert.Equal(t, []string{"b_icon.ico", "z_icon.ico"}, folders[0].Markers)
	content, err := afero.ReadFile(f.fs, path("A/desktop.ini"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "b_icon.ico,0")
	// desktop.ini 1 件とマーカー 2 件
	assert.Equal(t, 3, stats.Hidden)
}

func TestProcessor_ToggleFailure(t *testing.T) {
	f := newFixture(t, config.Default(), "A/a_icon.ico", "B/b_icon.ico")
	f.controller.failPaths[path("A/a_icon.ico")] = true

	stats, err := f.processor.Run(context.Background(), testRoot)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.DescriptorsCreated)
	// 解除 1 + 処理中 1 + 終了時 1
	assert.Equal(t, 3, stats.ToggleFailures)
	assert.Equal(t, 1, stats.Unhidden)
	// desktop.ini 2 件 + b_icon.ico
	assert.Equal(t, 3, stats.Hidden)
	assert.Equal(t, 3, stats.HiddenAtEnd)
	assert.Contains(t, f.out.String(), "属性の変更に失敗: 2")
}

func TestProcessor_WriteFailureContinues(t *testing.T) {
	cfg := config.Default()
	f := newFixture(t, cfg, "A/a_icon.ico")
	require.NoError(t, afero.WriteFile(f.fs, filepath.Join(testCacheDir, "iconcache_16.db"), []byte("x"), 0644))

	processor, err := NewProcessor(cfg, afero.NewReadOnlyFs(f.fs), f.platform, report.NewGenerator(f.out), logging.Discard)
	require.NoError(t, err)

	stats, err := processor.Run(context.Background(), testRoot)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.WriteFailures)
	assert.Zero(t, stats.DescriptorsCreated)
	// マーカーは隠す
	assert.Equal(t, 1, stats.Hidden)
	assert.Contains(t, f.out.String(), "desktop.ini を作成できませんでした")
	assert.Contains(t, f.out.String(), "アイコンキャッシュの削除中にエラーが発生しました")
}

func TestProcessor_SweepIgnoresPatternsButRespectsDepth(t *testing.T) {
	cfg := config.Default()
	cfg.Depth = 1
	cfg.FolderPatterns = []string{"*/Temp/*"}
	f := newFixture(t, cfg,
		"Temp/t_icon.ico",
		"Temp/desktop.ini",
		"A/notes.ini",
		"A/B/deep_icon.ico",
	)

	unhidden, failed, err := f.processor.Sweep(context.Background(), testRoot, false)
	require.NoError(t, err)

	assert.Equal(t, 2, unhidden)
	assert.Zero(t, failed)
	assert.False(t, f.controller.hidden[path("Temp/t_icon.ico")])
	_, ok := f.controller.hidden[path("Temp/t_icon.ico")]
	assert.True(t, ok)
	_, ok = f.controller.hidden[path("A/notes.ini")]
	assert.False(t, ok, "desktop.ini 以外の .ini に触れています")
	_, ok = f.controller.hidden[path("A/B/deep_icon.ico")]
	assert.False(t, ok, "深さ制限を超えたファイルに触れています")
}

func TestProcessor_CacheClearFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, config.Default(), "A/a_icon.ico")
	f.platform.cacheErr = platform.ErrUnsupported

	stats, err := f.processor.Run(context.Background(), testRoot)
	require.NoError(t, err)
	assert.Zero(t, stats.CacheFilesDeleted)
	assert.Contains(t, f.out.String(), "アイコンキャッシュの削除中にエラーが発生しました")

	_, err = f.processor.ClearIconCache()
	assert.ErrorIs(t, err, platform.ErrUnsupported)
}

func TestProcessor_RootErrors(t *testing.T) {
	f := newFixture(t, config.Default())

	_, err := f.processor.Run(context.Background(), "/missing")
	assert.Error(t, err)
}

func TestNewProcessor_InvalidPattern(t *testing.T) {
	cfg := config.Default()
	cfg.FolderPatterns = []string{"[bad"}

	_, err := NewProcessor(cfg, afero.NewMemMapFs(), &fakePlatform{attributes: newRecordingController()}, report.NewGenerator(&strings.Builder{}), logging.Discard)
	assert.Error(t, err)
}
