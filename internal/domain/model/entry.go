// package model はドメインモデルを定義します
package model

import (
	"path/filepath"
	"strings"
)

const (
	// MarkerPattern はアイコンマーカーとして扱うファイル名のパターンです
	MarkerPattern = "*" + MarkerSuffix
	// MarkerSuffix はアイコンマーカーのファイル名末尾です
	MarkerSuffix = "_icon.ico"
	// DescriptorName はエクスプローラーが読み込むフォルダ記述ファイルの名前です
	DescriptorName = "desktop.ini"
)

// FolderEntry は走査中に訪問したフォルダを表します
type FolderEntry struct {
	// Path はフォルダの絶対パスを表します
	Path string
	// RelPath はルートディレクトリからの相対パスを表します（ルート自身は "."）
	RelPath string
	// Depth はルートディレクトリからの深さを表します（ルートが 0、直下が 1）
	Depth int
	// Dirs は除外パターン適用後の子フォルダ名です
	Dirs []string
	// Files は除外パターン適用後のファイル名です
	Files []string
}

// Markers はフォルダ直下にあるアイコンマーカーのファイル名を返します
func (e FolderEntry) Markers() []string {
	var markers []string
	for _, name := range e.Files {
		if IsMarker(name) {
			markers = append(markers, name)
		}
	}
	return markers
}

// IconFolder はアイコンマーカーを含み、desktop.ini の作成対象となるフォルダです
type IconFolder struct {
	Path    string
	RelPath string
	Depth   int
	Markers []string
}

// PrimaryMarker は desktop.ini が参照するマーカー（名前順で先頭）を返します
func (f IconFolder) PrimaryMarker() string {
	if len(f.Markers) == 0 {
		return ""
	}
	return f.Markers[0]
}

// DescriptorPath は desktop.ini の配置先パスを返します
func (f IconFolder) DescriptorPath() string {
	return filepath.Join(f.Path, DescriptorName)
}

// Name はフォルダ名を返します
func (f IconFolder) Name() string {
	return filepath.Base(f.Path)
}

// IsMarker はファイル名がアイコンマーカーかどうかを判定します
func IsMarker(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), MarkerSuffix)
}

// IsDescriptor はファイル名が desktop.ini かどうかを判定します
func IsDescriptor(name string) bool {
	return strings.EqualFold(name, DescriptorName)
}
