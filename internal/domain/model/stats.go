package model

import "errors"

// ErrCancelled はユーザーがフォルダ選択をキャンセルしたことを表します
var ErrCancelled = errors.New("フォルダが選択されませんでした")

// RunStats は 1 回の実行で集計したカウンタです
type RunStats struct {
	// FoldersVisited は処理フェーズで訪問したフォルダ数です
	FoldersVisited int
	// FoldersQualified はマーカーを含み深さ制限内にあったフォルダ数です
	FoldersQualified int
	// DescriptorsCreated は新規作成した desktop.ini の数です
	DescriptorsCreated int
	// DescriptorsExisting は既に存在していたため作成しなかった desktop.ini の数です
	DescriptorsExisting int
	// WriteFailures は desktop.ini の書き込みに失敗したフォルダ数です
	WriteFailures int
	// Hidden は処理フェーズで隠し属性を付与したファイル数です
	Hidden int
	// Unhidden は開始時に隠し属性を解除したファイル数です
	Unhidden int
	// HiddenAtEnd は終了時に隠し属性を付与したファイル数です
	HiddenAtEnd int
	// ToggleFailures は属性変更に失敗した回数です
	ToggleFailures int
	// CacheFilesDeleted は削除したアイコンキャッシュファイル数です
	CacheFilesDeleted int
}
