package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"FolderIcon/internal/domain/model"
	"FolderIcon/internal/infrastructure/logging"
)

// descriptorTemplate は desktop.ini の固定スキーマです
const descriptorTemplate = "[.ShellClassInfo]\n" +
	"IconResource=.%c%s,0\n" +
	"[ViewState]\n" +
	"Mode=\n" +
	"Vid=\n" +
	"FolderType=Generic\n"

// RenderDescriptor はマーカーを参照する desktop.ini の内容を返します
func RenderDescriptor(marker string) string {
	return fmt.Sprintf(descriptorTemplate, filepath.Separator, marker)
}

// DescriptorWriter は対象フォルダに desktop.ini を作成します
type DescriptorWriter struct {
	fs     afero.Fs
	logger logging.Logger
}

// NewDescriptorWriter は新しい DescriptorWriter インスタンスを作成します
func NewDescriptorWriter(fs afero.Fs, logger logging.Logger) *DescriptorWriter {
	return &DescriptorWriter{fs: fs, logger: logger}
}

// Ensure は folder に desktop.ini が無ければ作成し、新規作成した場合に true を返します。
// 既存のファイルは上書きしません
func (w *DescriptorWriter) Ensure(folder model.IconFolder) (bool, error) {
	marker := folder.PrimaryMarker()
	if marker == "" {
		return false, fmt.Errorf("%s にマーカーがありません", folder.Path)
	}

	path := folder.DescriptorPath()
	exists, err := afero.Exists(w.fs, path)
	if err != nil {
		return false, fmt.Errorf("%s の確認に失敗しました: %w", path, err)
	}
	if exists {
		w.logger.Log("DEBUG", fmt.Sprintf("既存の desktop.ini があるためスキップ: %s", path), nil)
		return false, nil
	}

	f, err := w.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, describeWriteError(path, err)
	}

	if _, err := f.WriteString(RenderDescriptor(marker)); err != nil {
		f.Close()
		return false, describeWriteError(path, err)
	}
	if err := f.Close(); err != nil {
		return false, describeWriteError(path, err)
	}

	w.logger.Log("INFO", fmt.Sprintf("desktop.ini を作成しました: %s", path), nil)
	return true, nil
}

func describeWriteError(path string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%s の作成に失敗しました: アクセスが拒否されました: %w", path, err)
	}
	return fmt.Errorf("%s の作成に失敗しました: %w", path, err)
}
