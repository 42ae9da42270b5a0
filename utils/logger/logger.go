package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gridstore-io/gridlink/constants"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger zerolog.Logger

// stdout carries machine-readable protocol messages; logs go to stderr and
// the rotating file so the two streams never interleave. The mutex keeps
// lines whole when concurrent readers emit records.
var (
	messageMu     sync.Mutex
	messageWriter = os.Stdout
)

func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// Init reconfigures the package logger from viper settings. Log files rotate
// under <CONFIG_FOLDER>/logs.
func Init() {
	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	writers := []io.Writer{zerolog.MultiLevelWriter(console)}
	if folder := viper.GetString(constants.ConfigFolder); folder != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   filepath.Join(folder, "logs", "gridlink.log"),
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		writers = append(writers, zerolog.MultiLevelWriter(fileWriter))
	}

	level := zerolog.InfoLevel
	if configured := viper.GetString(constants.LogLevel); configured != "" {
		if parsed, err := zerolog.ParseLevel(configured); err == nil {
			level = parsed
		}
	}

	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().Timestamp().Logger().Level(level)
}

// Emit writes a protocol message as a single JSON line on stdout.
func Emit(message any) {
	encoded, err := json.Marshal(message)
	if err != nil {
		Errorf("failed to encode message: %s", err)
		return
	}
	messageMu.Lock()
	defer messageMu.Unlock()
	fmt.Fprintln(messageWriter, string(encoded))
}

func Debug(v ...any) {
	logger.Debug().Msg(fmt.Sprint(v...))
}

func Debugf(format string, v ...any) {
	logger.Debug().Msgf(format, v...)
}

func Info(v ...any) {
	logger.Info().Msg(fmt.Sprint(v...))
}

func Infof(format string, v ...any) {
	logger.Info().Msgf(format, v...)
}

func Warn(v ...any) {
	logger.Warn().Msg(fmt.Sprint(v...))
}

func Warnf(format string, v ...any) {
	logger.Warn().Msgf(format, v...)
}

func Error(v ...any) {
	logger.Error().Msg(fmt.Sprint(v...))
}

func Errorf(format string, v ...any) {
	logger.Error().Msgf(format, v...)
}

func Fatal(v ...any) {
	logger.Fatal().Msg(fmt.Sprint(v...))
}

func Fatalf(format string, v ...any) {
	logger.Fatal().Msgf(format, v...)
}
