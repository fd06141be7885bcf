// Package iconize はフォルダアイコン設定の一連の処理（解除・作成・報告・再設定・キャッシュ削除）を提供します
package iconize

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"FolderIcon/internal/config"
	"FolderIcon/internal/domain/model"
	"FolderIcon/internal/infrastructure/filesystem"
	"FolderIcon/internal/infrastructure/logging"
	"FolderIcon/internal/infrastructure/platform"
	"FolderIcon/internal/usecase/report"
)

// Processor は各フェーズを順番に実行します
type Processor struct {
	cfg      config.Config
	filter   *filesystem.Filter
	scanner  *filesystem.Scanner
	writer   *filesystem.DescriptorWriter
	cleaner  *filesystem.CacheCleaner
	toggler  *platform.Toggler
	platform platform.Platform
	report   *report.Generator
	logger   logging.Logger
}

// NewProcessor は新しい Processor インスタンスを作成します。
// 除外パターンが解釈できない場合はエラーを返します
func NewProcessor(cfg config.Config, fs afero.Fs, plat platform.Platform, gen *report.Generator, logger logging.Logger) (*Processor, error) {
	filter, err := filesystem.NewFilter(cfg.FolderPatterns, cfg.FilePatterns)
	if err != nil {
		return nil, err
	}

	return &Processor{
		cfg:      cfg,
		filter:   filter,
		scanner:  filesystem.NewScanner(fs, logger),
		writer:   filesystem.NewDescriptorWriter(fs, logger),
		cleaner:  filesystem.NewCacheCleaner(fs, logger),
		toggler:  platform.NewToggler(plat.Attributes(), logger),
		platform: plat,
		report:   gen,
		logger:   logger,
	}, nil
}

// Run は root に対して全フェーズを実行し、集計結果を返します。
// アイコンキャッシュの削除に失敗してもエラーにはしません
func (p *Processor) Run(ctx context.Context, root string) (model.RunStats, error) {
	var stats model.RunStats
	p.logger.Log("INFO", fmt.Sprintf("処理を開始します: %s", root), nil)

	p.report.Progress("desktop.ini と *_icon.ico の隠し属性を解除しています...")
	unhidden, failed, err := p.Sweep(ctx, root, false)
	if err != nil {
		return stats, err
	}
	stats.Unhidden = unhidden
	stats.ToggleFailures += failed

	folders, err := p.Process(ctx, root, &stats)
	if err != nil {
		return stats, err
	}

	p.report.WriteFolderStructure(folders)
	p.report.WriteSummary(stats)

	p.report.Failure("desktop.ini と *_icon.ico を隠しファイルにしています...")
	hidden, failed, err := p.Sweep(ctx, root, true)
	if err != nil {
		return stats, err
	}
	stats.HiddenAtEnd = hidden
	stats.ToggleFailures += failed

	deleted, cacheErr := p.ClearIconCache()
	stats.CacheFilesDeleted = deleted
	p.report.WriteCacheResult(deleted, cacheErr)

	p.report.WriteRehidden(stats.HiddenAtEnd)
	p.logger.Log("INFO", "処理が完了しました", nil)
	return stats, nil
}

// Process は除外パターンと深さ制限を適用して走査し、マーカーを含むフォルダに desktop.ini を作成します。
// 新規作成した desktop.ini とフォルダ内のマーカーは隠しファイルにします
func (p *Processor) Process(ctx context.Context, root string, stats *model.RunStats) ([]model.IconFolder, error) {
	var folders []model.IconFolder

	err := p.scanner.Walk(ctx, root, p.filter, func(entry model.FolderEntry) error {
		stats.FoldersVisited++
		if entry.Depth > p.cfg.Depth {
			return nil
		}

		markers := entry.Markers()
		if len(markers) == 0 {
			return nil
		}

		folder := model.IconFolder{
			Path:    entry.Path,
			RelPath: entry.RelPath,
			Depth:   entry.Depth,
			Markers: markers,
		}
		folders = append(folders, folder)
		stats.FoldersQualified++

		created, err := p.writer.Ensure(folder)
		switch {
		case err != nil:
			stats.WriteFailures++
			p.logger.Log("ERROR", fmt.Sprintf("desktop.ini を作成できません: %s", folder.Path), err)
			p.report.Failure(fmt.Sprintf("%s の desktop.ini を作成できませんでした: %v", folder.Path, err))
		case created:
			stats.DescriptorsCreated++
			p.hide(ctx, folder.DescriptorPath(), stats)
		default:
			stats.DescriptorsExisting++
		}

		for _, m := range markers {
			p.hide(ctx, filepath.Join(entry.Path, m), stats)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return folders, nil
}

func (p *Processor) hide(ctx context.Context, path string, stats *model.RunStats) {
	if p.toggler.SetHidden(ctx, path, true) {
		stats.Hidden++
		return
	}
	stats.ToggleFailures++
}

// Sweep は深さ制限内の desktop.ini とマーカーの隠し属性をまとめて付与または解除します。
// 除外パターンは適用しません。成功件数と失敗件数を返します
func (p *Processor) Sweep(ctx context.Context, root string, hidden bool) (int, int, error) {
	succeeded, failed := 0, 0

	err := p.scanner.Walk(ctx, root, nil, func(entry model.FolderEntry) error {
		if entry.Depth > p.cfg.Depth {
			return filepath.SkipDir
		}
		for _, name := range entry.Files {
			if !model.IsDescriptor(name) && !model.IsMarker(name) {
				continue
			}
			if p.toggler.SetHidden(ctx, filepath.Join(entry.Path, name), hidden) {
				succeeded++
			} else {
				failed++
			}
		}
		return nil
	})
	return succeeded, failed, err
}

// ClearIconCache はユーザーのアイコンキャッシュを削除し、削除件数を返します
func (p *Processor) ClearIconCache() (int, error) {
	dir, err := p.platform.IconCacheDir()
	if err != nil {
		return 0, fmt.Errorf("アイコンキャッシュの場所を特定できません: %w", err)
	}
	return p.cleaner.Clear(dir)
}
