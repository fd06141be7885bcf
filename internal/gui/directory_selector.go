// Package gui はGUIを提供します
package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"FolderIcon/internal/domain/model"
)

// Default window size constants
const (
	DefaultWindowWidth  = 800
	DefaultWindowHeight = 600
)

// DirectoryValidator は、ディレクトリパスの検証を行うインターフェース
type DirectoryValidator interface {
	ValidateDirectoryPath(path string) error
}

// DirectorySelector は、Fyneを使用してディレクトリ選択を行う構造体
type DirectorySelector struct {
	validator DirectoryValidator
}

// NewDirectorySelector は、DirectorySelectorの新しいインスタンスを作成します
func NewDirectorySelector(validator DirectoryValidator) *DirectorySelector {
	return &DirectorySelector{
		validator: validator,
	}
}

// SelectDirectory は、Fyneダイアログを使用してディレクトリを選択し、
// 選択されたパスまたはエラーを返します。
// ダイアログをキャンセルするかウィンドウを閉じた場合は model.ErrCancelled を返します
func (s *DirectorySelector) SelectDirectory(title string) (string, error) {
	done := make(chan struct{})
	var result struct {
		path string
		err  error
	}

	a := app.New()
	w := a.NewWindow(title)
	w.Resize(fyne.NewSize(DefaultWindowWidth, DefaultWindowHeight))

	d := dialog.NewFolderOpen(func(selectedURI fyne.ListableURI, err error) {
		defer close(done)
		if err != nil {
			result.err = fmt.Errorf("フォルダ選択エラー: %w", err)
			return
		}
		if selectedURI == nil {
			result.err = model.ErrCancelled
			return
		}
		path := selectedURI.Path()
		if err := s.validator.ValidateDirectoryPath(path); err != nil {
			result.err = fmt.Errorf("パス検証エラー: %w", err)
			return
		}
		result.path = path
	}, w)
	d.Show()
	w.Show()

	// イベントループ内で待機するため、a.Run() を実行
	go func() {
		<-done
		a.Quit()
	}()
	a.Run()

	if result.path == "" && result.err == nil {
		return "", model.ErrCancelled
	}
	return result.path, result.err
}
