package filesystem

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gobwas/glob"
)

// Filter はワイルドカードパターンでフォルダやファイルを除外します。
// パターンはパス全体に対して評価され、'*' は区切り文字をまたいで一致します。
// フォルダ側の候補文字列には末尾に '/' を付与するため、"*/Temp/*" は Temp フォルダ自体にも一致します。
type Filter struct {
	folderPatterns []string
	filePatterns   []string
	folders        []glob.Glob
	files          []glob.Glob
	foldCase       bool
}

// NewFilter はフォルダ用とファイル用のパターンから Filter を作成します
func NewFilter(folderPatterns, filePatterns []string) (*Filter, error) {
	f := &Filter{
		folderPatterns: append([]string(nil), folderPatterns...),
		filePatterns:   append([]string(nil), filePatterns...),
		foldCase:       runtime.GOOS == "windows",
	}

	var err error
	if f.folders, err = f.compile(folderPatterns); err != nil {
		return nil, err
	}
	if f.files, err = f.compile(filePatterns); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Filter) compile(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(f.normalize(pattern))
		if err != nil {
			return nil, fmt.Errorf("パターン %q を解釈できません: %w", pattern, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

func (f *Filter) normalize(s string) string {
	s = filepath.ToSlash(s)
	if f.foldCase {
		s = strings.ToLower(s)
	}
	return s
}

// MatchFolderRel はルートからの相対パスがフォルダ除外パターンに一致するかを判定します。
// 一致したフォルダは配下ごと走査対象から外れます
func (f *Filter) MatchFolderRel(relPath string) bool {
	if f == nil {
		return false
	}
	return matchAny(f.folders, f.normalize("/"+strings.Trim(filepath.ToSlash(relPath), "/")+"/"))
}

// MatchFolder は子フォルダのフルパスがフォルダ除外パターンに一致するかを判定します
func (f *Filter) MatchFolder(fullPath string) bool {
	if f == nil {
		return false
	}
	return matchAny(f.folders, f.normalize(strings.TrimSuffix(filepath.ToSlash(fullPath), "/")+"/"))
}

// MatchFile はファイルのフルパスがファイル除外パターンに一致するかを判定します
func (f *Filter) MatchFile(fullPath string) bool {
	if f == nil {
		return false
	}
	return matchAny(f.files, f.normalize(fullPath))
}

// FolderPatterns はフォルダ除外パターンの写しを返します
func (f *Filter) FolderPatterns() []string {
	return append([]string(nil), f.folderPatterns...)
}

// FilePatterns はファイル除外パターンの写しを返します
func (f *Filter) FilePatterns() []string {
	return append([]string(nil), f.filePatterns...)
}

func matchAny(globs []glob.Glob, candidate string) bool {
	for _, g := range globs {
		if g.Match(candidate) {
			return true
		}
	}
	return false
}
