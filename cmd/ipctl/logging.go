package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 日志轮转参数。
const (
	logMaxSizeMB  = 100
	logMaxBackups = 7
	logMaxAgeDays = 30
)

// buildLogger 根据全局日志选项构建 slog 实例。
func buildLogger(cmd *cli.Command) (*slog.Logger, func(), error) {
	return newLogger(cmd.String("log-level"), cmd.String("log-format"), cmd.String("log-file"))
}

// newLogger 构建 slog 实例。
// 指定 file 时输出经 lumberjack 轮转，否则写 stderr；
// 返回的清理函数用于关闭日志文件（stderr 输出时为空操作）。
func newLogger(level, format, file string) (*slog.Logger, func(), error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, nil, &usageError{msg: fmt.Sprintf("未知日志级别 %q", level)}
	}

	var output io.Writer = os.Stderr
	cleanup := func() {}
	if file != "" {
		rotator := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
			Compress:   true,
		}
		output = rotator
		cleanup = func() { _ = rotator.Close() }
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		return nil, nil, &usageError{msg: fmt.Sprintf("未知日志格式 %q", format)}
	}

	return slog.New(handler), cleanup, nil
}
