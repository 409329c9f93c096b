package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"pbc/misc"
)

// ConsoleLoggerConfig controls what the terminal sees. The console has no
// destination or mode - info and below go to stdout, errors to stderr.
type ConsoleLoggerConfig struct {
	Level string `yaml:"level" validate:"required,oneof=none debug normal"`
}

// FileLoggerConfig controls the on-disk log next to which the panic capture
// file lives.
type FileLoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	FileLogger    FileLoggerConfig    `yaml:"file"`
	ConsoleLogger ConsoleLoggerConfig `yaml:"console"`
}

// consoleLevel maps a configured level name to the enabler for the stdout
// core. Errors always route to stderr separately.
func consoleLevel(name string) (zap.LevelEnablerFunc, bool) {
	switch name {
	case "normal":
		return func(lvl zapcore.Level) bool {
			return zapcore.InfoLevel <= lvl && lvl < zapcore.ErrorLevel
		}, true
	case "debug":
		return func(lvl zapcore.Level) bool {
			return zapcore.DebugLevel <= lvl && lvl < zapcore.ErrorLevel
		}, true
	}
	return nil, false
}

func consoleEncoderConfig(out *os.File) zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(out) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return ec
}

// Prepare builds the program logger: stdout/stderr console cores per the
// console level, plus a file core when a destination is configured or a
// debug report is being collected.
func (conf *LoggingConfig) Prepare(rpt *Report) (*zap.Logger, error) {

	// Console - stdout for routine output, stderr for errors, each with its
	// own color detection so redirecting one stream does not dull the other.

	consoleCoreLP, consoleCoreHP := zapcore.NewNopCore(), zapcore.NewNopCore()
	if enabler, ok := consoleLevel(conf.ConsoleLogger.Level); ok {
		consoleCoreLP = zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoderConfig(os.Stdout)),
			zapcore.Lock(os.Stdout), enabler)
		consoleCoreHP = zapcore.NewCore(
			newShortErrEncoder(consoleEncoderConfig(os.Stderr)),
			zapcore.Lock(os.Stderr),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool { return lvl >= zapcore.ErrorLevel }))
	}

	// File

	opener := func(fname, mode string) (*os.File, error) {
		flags := os.O_CREATE | os.O_WRONLY
		if mode == "append" {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		return os.OpenFile(fname, flags, 0644)
	}

	levelRequested := conf.FileLogger.Level
	modeRequested := conf.FileLogger.Mode
	if rpt != nil {
		// a debug report always captures the full log, fresh
		levelRequested = "debug"
		modeRequested = "overwrite"
	}

	var logLevel zap.AtomicLevel
	logRequested := true
	switch levelRequested {
	case "debug":
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "normal":
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		logRequested = false
	}

	fileCore := zapcore.NewNopCore()
	var newName string
	if logRequested {
		fileEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())

		// capture panic output next to the log if possible
		var (
			ef  *os.File
			err error
		)
		if ef, err = opener(filepath.Join(filepath.Dir(conf.FileLogger.Destination), misc.GetAppName()+"-panic.log"), modeRequested); err == nil {
		} else if ef, err = os.CreateTemp("", misc.GetAppName()+"-panic.*.log"); err == nil {
		} else {
			// just quietly ignore
			ef = nil
		}
		if ef != nil {
			debug.SetCrashOutput(ef, debug.CrashOptions{})
			rpt.Store("panic.log", ef.Name())
			ef.Close()
		}

		if f, err := opener(conf.FileLogger.Destination, modeRequested); err == nil {
			fileCore = zapcore.NewCore(fileEncoder, zapcore.Lock(f), logLevel)
			rpt.Store("final.log", f.Name())
		} else if f, err = os.CreateTemp("", misc.GetAppName()+".*.log"); err == nil {
			newName = f.Name()
			fileCore = zapcore.NewCore(fileEncoder, zapcore.Lock(f), logLevel)
			rpt.Store("final.log", newName)
		} else {
			return nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
		}
	}

	log := zap.New(zapcore.NewTee(consoleCoreHP, consoleCoreLP, fileCore), zap.AddCaller())
	if len(newName) != 0 {
		log.Warn("Log file was redirected to new location", zap.String("location", newName))
	}
	return log.Named(misc.GetAppName()), nil
}

// shortErrEncoder keeps stderr readable: errors logged to the console print
// their message only, never the verbose chain the file log carries.

type shortErrEncoder struct {
	zapcore.Encoder
}

func newShortErrEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return shortErrEncoder{zapcore.NewConsoleEncoder(cfg)}
}

func (c shortErrEncoder) Clone() zapcore.Encoder {
	return shortErrEncoder{c.Encoder.Clone()}
}

func (c shortErrEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	var newFields []zapcore.Field
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			e := f.Interface.(error)
			f.Interface = errors.New(e.Error())
		}
		newFields = append(newFields, f)
	}
	return c.Encoder.EncodeEntry(ent, newFields)
}
