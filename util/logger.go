package util

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger sets up the Zap Logger to log to the console in a human readable format. When logFile
// is set the same lines are appended to that file.
func InitLogger(logFile string) (*zap.Logger, error) {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	prodConfig.OutputPaths = []string{"stdout"}
	prodConfig.ErrorOutputPaths = []string{"stderr"}
	if logFile != "" {
		prodConfig.OutputPaths = append(prodConfig.OutputPaths, logFile)
		prodConfig.ErrorOutputPaths = append(prodConfig.ErrorOutputPaths, logFile)
	}
	prodConfig.DisableStacktrace = true
	return prodConfig.Build()
}
