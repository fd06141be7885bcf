// Package report はコンソール向けの進捗表示と集計結果の出力を提供します
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"FolderIcon/internal/config"
	"FolderIcon/internal/domain/model"
)

// Separator は出力の区切り線です
const Separator = "----------------------------------------"

// Generator はコンソールへの出力を担当します
type Generator struct {
	out     io.Writer
	info    *color.Color
	success *color.Color
	failure *color.Color
	summary *color.Color
	marker  *color.Color
}

// NewGenerator は新しい Generator インスタンスを作成します
func NewGenerator(out io.Writer) *Generator {
	return &Generator{
		out:     out,
		info:    color.New(color.FgCyan),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		summary: color.New(color.FgBlue),
		marker:  color.New(color.FgGreen),
	}
}

// WriteHeader は対象フォルダと設定内容を出力します
func (g *Generator) WriteHeader(root string, cfg config.Config) {
	fmt.Fprintln(g.out)
	g.info.Fprintln(g.out, "FolderIcon - フォルダアイコン設定ツール")
	fmt.Fprintln(g.out, "\n"+Separator)
	fmt.Fprintf(g.out, "対象フォルダ: %s\n", root)
	fmt.Fprintln(g.out, "除外設定:")
	fmt.Fprintf(g.out, "  除外フォルダ: %v\n", cfg.FolderPatterns)
	fmt.Fprintf(g.out, "  除外ファイル: %v\n", cfg.FilePatterns)
	fmt.Fprintf(g.out, "  フォルダの深さ: %d\n", cfg.Depth)
	fmt.Fprintln(g.out, "\n"+Separator)
}

// Progress は処理中の段階を出力します
func (g *Generator) Progress(message string) {
	g.success.Fprintln(g.out, message)
}

// Failure はエラーを出力します
func (g *Generator) Failure(message string) {
	g.failure.Fprintln(g.out, message)
}

// WriteFolderStructure はマーカーごとに深さに応じたインデントを付けて対象フォルダを出力します
func (g *Generator) WriteFolderStructure(folders []model.IconFolder) {
	for _, folder := range folders {
		indent := strings.Repeat("  ", folder.Depth)
		for _, m := range folder.Markers {
			fmt.Fprintf(g.out, "%s%d %s - %s\n", indent, folder.Depth, folder.Name(), g.marker.Sprint(m))
		}
	}
}

// WriteSummary は処理フェーズまでの集計結果を出力します
func (g *Generator) WriteSummary(stats model.RunStats) {
	fmt.Fprintln(g.out, "\n"+Separator)
	g.summary.Fprintf(g.out, "訪問したフォルダ数: %d\n", stats.FoldersVisited)
	g.summary.Fprintf(g.out, "処理したフォルダ数: %d\n", stats.FoldersQualified)
	g.summary.Fprintf(g.out, "作成した desktop.ini: %d\n", stats.DescriptorsCreated)
	g.summary.Fprintf(g.out, "既存の desktop.ini: %d\n", stats.DescriptorsExisting)
	g.summary.Fprintf(g.out, "隠しファイルにした数: %d\n", stats.Hidden)
	g.success.Fprintf(g.out, "隠し属性を解除した数: %d\n", stats.Unhidden)
	if stats.WriteFailures > 0 {
		g.failure.Fprintf(g.out, "desktop.ini の作成に失敗: %d\n", stats.WriteFailures)
	}
	if stats.ToggleFailures > 0 {
		g.failure.Fprintf(g.out, "属性の変更に失敗: %d\n", stats.ToggleFailures)
	}
}

// WriteRehidden は終了時に隠しファイルにした数を出力します
func (g *Generator) WriteRehidden(count int) {
	g.failure.Fprintf(g.out, "処理後に隠しファイルにした数: %d\n", count)
}

// WriteCacheResult はアイコンキャッシュ削除の結果を出力します
func (g *Generator) WriteCacheResult(deleted int, err error) {
	if err != nil {
		g.failure.Fprintf(g.out, "アイコンキャッシュの削除中にエラーが発生しました: %v\n", err)
	}
	g.success.Fprintf(g.out, "アイコンキャッシュを %d 件削除しました。\n", deleted)
}
