//go:build !windows

package platform

import "fmt"

type unsupportedPlatform struct{}

// New は隠し属性もアイコンキャッシュも持たない OS 向けの Platform を返します。
// どの操作も ErrUnsupported を返します
func New(backend string) (Platform, error) {
	switch backend {
	case "", BackendAttrib, BackendNative:
		return unsupportedPlatform{}, nil
	default:
		return nil, fmt.Errorf("不明な属性操作方法です: %q", backend)
	}
}

func (unsupportedPlatform) Attributes() AttributeController {
	return unsupportedAttributes{}
}

func (unsupportedPlatform) IconCacheDir() (string, error) {
	return "", ErrUnsupported
}
