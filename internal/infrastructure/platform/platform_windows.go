//go:build windows

package platform

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// ProfileEnv はユーザープロファイルのルートを示す環境変数です
const ProfileEnv = "USERPROFILE"

type windowsPlatform struct {
	attributes AttributeController
}

// New は backend で指定した方法で隠し属性を操作する Platform を返します
func New(backend string) (Platform, error) {
	switch backend {
	case "", BackendAttrib:
		return &windowsPlatform{attributes: NewAttribCommand()}, nil
	case BackendNative:
		return &windowsPlatform{attributes: nativeAttributes{}}, nil
	default:
		return nil, fmt.Errorf("不明な属性操作方法です: %q", backend)
	}
}

func (p *windowsPlatform) Attributes() AttributeController {
	return p.attributes
}

func (p *windowsPlatform) IconCacheDir() (string, error) {
	profile := os.Getenv(ProfileEnv)
	if profile == "" {
		return "", fmt.Errorf("環境変数 %s が設定されていません", ProfileEnv)
	}
	return IconCacheDirFrom(profile), nil
}

// nativeAttributes は SetFileAttributes を直接呼び出します
type nativeAttributes struct{}

func (nativeAttributes) SetHidden(_ context.Context, path string, hidden bool) error {
	ptr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("パスを変換できません: %w", err)
	}

	attrs, err := windows.GetFileAttributes(ptr)
	if err != nil {
		return fmt.Errorf("%s の属性を取得できません: %w", path, err)
	}

	if hidden {
		attrs |= windows.FILE_ATTRIBUTE_HIDDEN
	} else {
		attrs &^= windows.FILE_ATTRIBUTE_HIDDEN
	}

	if err := windows.SetFileAttributes(ptr, attrs); err != nil {
		return fmt.Errorf("%s の属性を設定できません: %w", path, err)
	}
	return nil
}
