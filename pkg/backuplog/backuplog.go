package backuplog

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns the event logger: one "[YYYY-MM-DD HH:MM:SS] message" line
// per event, appended to logFile and echoed to standard output. An empty
// logFile logs to stdout only.
func New(logFile string) (*zap.Logger, error) {
	encoder := getEncoder()

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zapcore.InfoLevel),
	}

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("backuplog: open %s: %w", logFile, err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(file), zapcore.InfoLevel))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

func getEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "message",
		TimeKey:          "time",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       BracketTimeEncoder,
		ConsoleSeparator: " ",
	})
}

// BracketTimeEncoder formats event times as [YYYY-MM-DD HH:MM:SS].
func BracketTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.Format("2006-01-02 15:04:05") + "]")
}
