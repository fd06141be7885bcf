// Package ui はユーザーインターフェース機能を提供します
package ui

import (
	"errors"
	"fmt"

	"github.com/sqweek/dialog"

	"FolderIcon/internal/domain/model"
	"FolderIcon/internal/infrastructure/filesystem"
)

// DirectorySelector はネイティブのダイアログでディレクトリ選択機能を提供します
type DirectorySelector struct {
	// validator はディレクトリパスの検証を行うインターフェースです
	validator filesystem.DirectoryValidator
	// browse はダイアログを表示して選択されたパスを返します
	browse func(title string) (string, error)
}

// NewDirectorySelector は新しい DirectorySelector インスタンスを作成します
func NewDirectorySelector(validator filesystem.DirectoryValidator) *DirectorySelector {
	return &DirectorySelector{
		validator: validator,
		browse: func(title string) (string, error) {
			return dialog.Directory().Title(title).Browse()
		},
	}
}

// SelectDirectory はダイアログを表示してディレクトリを選択します。
// キャンセルや空の選択は model.ErrCancelled を返します
func (d *DirectorySelector) SelectDirectory(title string) (string, error) {
	selectedDir, err := d.browse(title)
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			return "", model.ErrCancelled
		}
		return "", fmt.Errorf("ディレクトリの選択がエラーになりました: %w", err)
	}
	if selectedDir == "" {
		return "", model.ErrCancelled
	}

	if err := d.validator.ValidateDirectoryPath(selectedDir); err != nil {
		return "", fmt.Errorf("無効なディレクトリが選択されました: %w", err)
	}

	return selectedDir, nil
}
