// Package filesystem はファイルシステム操作を提供します
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"FolderIcon/internal/domain/model"
	"FolderIcon/internal/infrastructure/logging"
)

// DirectoryValidator はディレクトリの検証機能を提供するインターフェースです
type DirectoryValidator interface {
	ValidateDirectoryPath(path string) error
}

// VisitFunc は訪問したフォルダごとに呼び出されます。
// filepath.SkipDir を返すとそのフォルダの配下には降りません
type VisitFunc func(entry model.FolderEntry) error

// Scanner はファイルシステムをトップダウンに走査するための構造体です
type Scanner struct {
	fs     afero.Fs
	logger logging.Logger
}

// NewScanner は新しい Scanner インスタンスを作成します
func NewScanner(fs afero.Fs, logger logging.Logger) *Scanner {
	return &Scanner{
		fs:     fs,
		logger: logger,
	}
}

// ValidateDirectoryPath はパスが安全で有効なディレクトリであることを確認します
func (s *Scanner) ValidateDirectoryPath(path string) error {
	if path == "" {
		return fmt.Errorf("ディレクトリパスが指定されていません")
	}

	fileInfo, err := s.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("ディレクトリが存在しません: %w", err)
	}

	if !fileInfo.IsDir() {
		return fmt.Errorf("指定されたパスはディレクトリではありません")
	}

	if !filepath.IsAbs(path) {
		return fmt.Errorf("絶対パスで指定してください")
	}

	if strings.ContainsAny(path, "<>|?*") {
		return fmt.Errorf("パスに不正な文字が含まれています")
	}

	return nil
}

// Walk は rootDir 以下を名前順・トップダウンで走査し、訪問したフォルダごとに visit を呼び出します。
// filter が nil でなければ、相対パスが除外パターンに一致したフォルダは配下ごと枝刈りされ、
// 子フォルダとファイルの一覧からも一致したものが取り除かれます。ルート自身は枝刈りされません。
func (s *Scanner) Walk(ctx context.Context, rootDir string, filter *Filter, visit VisitFunc) error {
	rootDir = filepath.Clean(rootDir)

	info, err := s.fs.Stat(rootDir)
	if err != nil {
		return fmt.Errorf("ルートディレクトリを参照できません: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("ルートがディレクトリではありません: %s", rootDir)
	}

	if err := s.walkDir(ctx, rootDir, rootDir, filter, visit); err != nil {
		return fmt.Errorf("ファイルシステムの走査に失敗しました: %w", err)
	}
	return nil
}

func (s *Scanner) walkDir(ctx context.Context, rootDir, dir string, filter *Filter, visit VisitFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relPath, err := filepath.Rel(rootDir, dir)
	if err != nil {
		s.logger.Log("WARN", fmt.Sprintf("相対パスの取得に失敗: %s", dir), err)
		return nil
	}

	if relPath != "." && filter.MatchFolderRel(relPath) {
		s.logger.Log("DEBUG", fmt.Sprintf("除外パターンに一致したためスキップ: %s", relPath), nil)
		return nil
	}

	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		s.logger.Log("WARN", fmt.Sprintf("パス '%s' の走査中にエラー発生", dir), err)
		return nil
	}

	entry := model.FolderEntry{
		Path:    dir,
		RelPath: relPath,
		Depth:   Depth(relPath),
	}

	for _, info := range infos {
		fullPath := filepath.Join(dir, info.Name())
		if info.IsDir() {
			if filter.MatchFolder(fullPath) {
				s.logger.Log("DEBUG", fmt.Sprintf("除外パターンに一致したためスキップ: %s", fullPath), nil)
				continue
			}
			entry.Dirs = append(entry.Dirs, info.Name())
			continue
		}
		if filter.MatchFile(fullPath) {
			continue
		}
		entry.Files = append(entry.Files, info.Name())
	}

	if err := visit(entry); err != nil {
		if errors.Is(err, filepath.SkipDir) {
			return nil
		}
		return err
	}

	for _, name := range entry.Dirs {
		if err := s.walkDir(ctx, rootDir, filepath.Join(dir, name), filter, visit); err != nil {
			return err
		}
	}
	return nil
}

// Depth はルートからの相対パスを深さに変換します（ルートが 0、直下が 1）
func Depth(relPath string) int {
	if relPath == "." || relPath == "" {
		return 0
	}
	return strings.Count(relPath, string(os.PathSeparator)) + 1
}
