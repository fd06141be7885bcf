// Package logging はロギング機能を提供します
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel はログレベル未指定時の出力しきい値です
const DefaultLevel = "warn"

// LogEntry はログエントリを表す構造体です
type LogEntry struct {
	// Timestamp はログが記録された時刻をRFC3339形式で表します
	Timestamp string `json:"timestamp"`
	// Level はログレベル（info, warn, error等）を表します
	Level string `json:"level"`
	// Message はログメッセージの内容を表します
	Message string `json:"message"`
	// Error はエラーが発生した場合のエラーメッセージを表します
	Error string `json:"error,omitempty"`
}

// Logger は構造化ログを出力するためのインターフェースです
type Logger interface {
	Log(level, message string, err error)
}

// JSONLogger はJSONフォーマットでログを出力するロガーです
type JSONLogger struct {
	zl zerolog.Logger
}

// NewJSONLogger は全レベルを出力する新しいJSONLoggerインスタンスを作成します
func NewJSONLogger(writer io.Writer) *JSONLogger {
	if writer == nil {
		writer = os.Stdout
	}
	return &JSONLogger{zl: zerolog.New(writer).Level(zerolog.DebugLevel)}
}

// NewLeveledJSONLogger は minLevel 未満のログを捨てるJSONLoggerを作成します
func NewLeveledJSONLogger(writer io.Writer, minLevel string) (*JSONLogger, error) {
	level, err := ParseLevel(minLevel)
	if err != nil {
		return nil, err
	}
	logger := NewJSONLogger(writer)
	logger.zl = logger.zl.Level(level)
	return logger, nil
}

// ParseLevel はログレベル文字列を解釈します。空文字列は DefaultLevel として扱います
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		level = DefaultLevel
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.NoLevel, fmt.Errorf("不明なログレベルです: %q", level)
	}
	return parsed, nil
}

// Log はメッセージをJSONフォーマットでログ出力します
func (l *JSONLogger) Log(level, message string, err error) {
	parsed, perr := zerolog.ParseLevel(strings.ToLower(level))
	if perr != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	event := l.zl.WithLevel(parsed)
	if event == nil {
		return
	}
	event = event.Str("timestamp", time.Now().Format(time.RFC3339))
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(message)
}

// Discard は何も出力しないロガーです
var Discard Logger = &JSONLogger{zl: zerolog.Nop()}
