package filesystem

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"FolderIcon/internal/infrastructure/logging"
)

// IconCacheToken はアイコンキャッシュファイル名に含まれる文字列です（大文字小文字は区別しない）
const IconCacheToken = "iconcache"

// CacheCleaner はエクスプローラーのアイコンキャッシュを削除します
type CacheCleaner struct {
	fs     afero.Fs
	logger logging.Logger
}

// NewCacheCleaner は新しい CacheCleaner インスタンスを作成します
func NewCacheCleaner(fs afero.Fs, logger logging.Logger) *CacheCleaner {
	return &CacheCleaner{fs: fs, logger: logger}
}

// Clear は dir 直下のアイコンキャッシュファイルを削除し、削除できた件数を返します。
// 個々の削除に失敗しても残りの処理は続け、失敗はまとめてエラーとして返します
func (c *CacheCleaner) Clear(dir string) (int, error) {
	infos, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		return 0, fmt.Errorf("アイコンキャッシュのフォルダを読み込めません: %w", err)
	}

	deleted := 0
	var errs []error
	for _, info := range infos {
		if info.IsDir() || !strings.Contains(strings.ToLower(info.Name()), IconCacheToken) {
			continue
		}
		path := filepath.Join(dir, info.Name())
		if err := c.fs.Remove(path); err != nil {
			c.logger.Log("WARN", fmt.Sprintf("アイコンキャッシュを削除できません: %s", path), err)
			errs = append(errs, fmt.Errorf("%s: %w", info.Name(), err))
			continue
		}
		c.logger.Log("INFO", fmt.Sprintf("アイコンキャッシュを削除しました: %s", path), nil)
		deleted++
	}

	return deleted, errors.Join(errs...)
}
