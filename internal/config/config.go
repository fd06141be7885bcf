// Package config は実行時の設定（除外パターン、走査の深さ、各種バックエンド）を読み込みます
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gobwas/glob"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"FolderIcon/internal/infrastructure/logging"
	"FolderIcon/internal/infrastructure/platform"
)

// フォルダ選択の方法
const (
	PickerNative = "native"
	PickerFyne   = "fyne"
)

// 環境変数による上書き
const (
	EnvDepth      = "FOLDERICON_DEPTH"
	EnvPicker     = "FOLDERICON_PICKER"
	EnvAttributes = "FOLDERICON_ATTRIBUTES"
	EnvLogLevel   = "FOLDERICON_LOG_LEVEL"
)

// DefaultDepth は走査対象とするフォルダの最大深さの既定値です
const DefaultDepth = 5

var configNames = []string{"foldericon.yml", "foldericon.yaml"}

// Config は 1 回の実行を通して変更されない設定値です
type Config struct {
	// FolderPatterns はフォルダを除外するワイルドカードパターンです
	FolderPatterns []string `yaml:"folder_patterns"`
	// FilePatterns はファイルを除外するワイルドカードパターンです
	FilePatterns []string `yaml:"file_patterns"`
	// Depth は desktop.ini を作成するフォルダの最大深さです（ルートが 0）
	Depth int `yaml:"depth"`
	// Picker はフォルダ選択ダイアログの種類です（native または fyne）
	Picker string `yaml:"picker"`
	// Attributes は隠し属性の操作方法です（attrib または native）
	Attributes string `yaml:"attributes"`
	LogLevel   string `yaml:"log_level"`
	LogFile    string `yaml:"log_file,omitempty"`
}

// Default は既定の設定を返します
func Default() Config {
	return Config{
		FolderPatterns: []string{"*/Temp/*", "*.git*", "*/Theme/*"},
		FilePatterns:   []string{},
		Depth:          DefaultDepth,
		Picker:         PickerNative,
		Attributes:     platform.BackendAttrib,
		LogLevel:       logging.DefaultLevel,
	}
}

// Load は設定ファイルと環境変数から設定を作成します。
// path が空の場合は既定の場所を探し、見つからなければ既定値を使います。
// 戻り値の文字列は読み込んだ設定ファイルのパスです（既定値のみの場合は空）
func Load(path string) (Config, string, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, "", fmt.Errorf("設定ファイルを読み込めません: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, "", fmt.Errorf("設定ファイル %s の形式が不正です: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, "", err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

// LoadEnvFile は .env ファイルがあれば環境変数に読み込みます。既存の環境変数は上書きしません
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%s を読み込めません: %w", path, err)
	}
	return nil
}

// findConfigFile はカレントディレクトリ、実行ファイルのディレクトリ、~/.config/foldericon の順に設定ファイルを探します
func findConfigFile() string {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "foldericon"))
	}

	for _, dir := range dirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDepth); ok && v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s は整数で指定してください: %w", EnvDepth, err)
		}
		cfg.Depth = depth
	}
	if v, ok := lookup(EnvPicker); ok && v != "" {
		cfg.Picker = v
	}
	if v, ok := lookup(EnvAttributes); ok && v != "" {
		cfg.Attributes = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// Validate は設定値が正しいかを検証します
func (c Config) Validate() error {
	if c.Depth < 0 {
		return fmt.Errorf("depth は 0 以上で指定してください: %d", c.Depth)
	}
	switch c.Picker {
	case PickerNative, PickerFyne:
	default:
		return fmt.Errorf("picker は %s か %s で指定してください: %q", PickerNative, PickerFyne, c.Picker)
	}
	switch c.Attributes {
	case platform.BackendAttrib, platform.BackendNative:
	default:
		return fmt.Errorf("attributes は %s か %s で指定してください: %q", platform.BackendAttrib, platform.BackendNative, c.Attributes)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for _, patterns := range [][]string{c.FolderPatterns, c.FilePatterns} {
		for _, p := range patterns {
			if _, err := glob.Compile(filepath.ToSlash(p)); err != nil {
				return fmt.Errorf("パターン %q を解釈できません: %w", p, err)
			}
		}
	}
	return nil
}

// Marshal は設定を YAML に変換します
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
