package client

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 客户端全局日志；InitLogger 之前为 no-op，库方式嵌入时无需初始化
var Log = zap.NewNop().Sugar()

// InitLogger 客户端日志写入滚动文件；development 下同时输出到 stderr，且 DPanic 直接 panic
func InitLogger(filePath string, development bool) error {
	rolling := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    20,
		MaxBackups: 5,
		MaxAge:     3,
	})

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder

	level := zapcore.InfoLevel
	if development {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), rolling, level)

	opts := []zap.Option{zap.AddCaller()}
	if development {
		stderr := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level)
		core = zapcore.NewTee(core, stderr)
		opts = append(opts, zap.Development())
	}
	Log = zap.New(core, opts...).Named("gamesync-client").Sugar()
	return nil
}

// SetLogger 测试中注入 zaptest logger；nil 恢复 no-op
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	Log = l
}

// SyncLogger 退出前刷盘
func SyncLogger() {
	_ = Log.Sync()
}
