// Package platform は OS 依存の機能（隠し属性の操作、アイコンキャッシュの場所）を提供します
package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"FolderIcon/internal/infrastructure/logging"
)

// ErrUnsupported はこの OS で機能が提供されていないことを表します
var ErrUnsupported = errors.New("この OS ではサポートされていません")

// 隠し属性の操作方法
const (
	BackendAttrib = "attrib"
	BackendNative = "native"
)

// AttributeController はファイルの隠し属性を操作するインターフェースです
type AttributeController interface {
	SetHidden(ctx context.Context, path string, hidden bool) error
}

// Platform は OS 依存のサービスをまとめたインターフェースです
type Platform interface {
	Attributes() AttributeController
	IconCacheDir() (string, error)
}

// AttribCommand は attrib コマンドで隠し属性を切り替えます
type AttribCommand struct {
	// Name は実行するコマンド名です
	Name string
}

// NewAttribCommand は attrib を実行する AttribCommand を作成します
func NewAttribCommand() *AttribCommand {
	return &AttribCommand{Name: "attrib"}
}

// SetHidden は "attrib +h|-h path" を実行し、終了コードが 0 以外ならエラーを返します
func (a *AttribCommand) SetHidden(ctx context.Context, path string, hidden bool) error {
	flag := "-h"
	if hidden {
		flag = "+h"
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, a.Name, flag, path)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(out.String()); msg != "" {
			return fmt.Errorf("%s %s %s に失敗しました: %w (%s)", a.Name, flag, path, err, msg)
		}
		return fmt.Errorf("%s %s %s に失敗しました: %w", a.Name, flag, path, err)
	}
	return nil
}

type unsupportedAttributes struct{}

func (unsupportedAttributes) SetHidden(context.Context, string, bool) error {
	return ErrUnsupported
}

// Toggler は AttributeController の失敗をログに記録し、成否だけを返します
type Toggler struct {
	controller AttributeController
	logger     logging.Logger
}

// NewToggler は新しい Toggler インスタンスを作成します
func NewToggler(controller AttributeController, logger logging.Logger) *Toggler {
	return &Toggler{controller: controller, logger: logger}
}

// SetHidden は隠し属性を付与または解除し、成功した場合に true を返します
func (t *Toggler) SetHidden(ctx context.Context, path string, hidden bool) bool {
	if err := t.controller.SetHidden(ctx, path, hidden); err != nil {
		t.logger.Log("WARN", fmt.Sprintf("隠し属性を変更できません: %s", path), err)
		return false
	}
	return true
}

// IconCacheDirFrom はユーザープロファイルのパスからアイコンキャッシュのフォルダを求めます
func IconCacheDirFrom(profile string) string {
	return filepath.Join(profile, "AppData", "Local", "Microsoft", "Windows", "Explorer")
}
