package logging

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	name  string
	level AtomicLevel
	inUTC bool

	appenders []Appender
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

// Sublogger shares the appenders of its parent but has its own level.
func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return &impl{
		name:      name,
		level:     NewAtomicLevelAt(imp.level.Get()),
		inUTC:     imp.inUTC,
		appenders: imp.appenders,
	}
}

func (imp *impl) Sync() error {
	var err error
	for _, appender := range imp.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

func (imp *impl) Debug(args ...interface{}) { imp.logArgs(DEBUG, args) }
func (imp *impl) Debugf(template string, args ...interface{}) { imp.logf(DEBUG, template, args) }
func (imp *impl) Debugw(msg string, kvs ...interface{}) { imp.logw(DEBUG, msg, kvs) }
func (imp *impl) Info(args ...interface{}) { imp.logArgs(INFO, args) }
func (imp *impl) Infof(template string, args ...interface{}) { imp.logf(INFO, template, args) }
func (imp *impl) Infow(msg string, kvs ...interface{}) { imp.logw(INFO, msg, kvs) }
func (imp *impl) Warn(args ...interface{}) { imp.logArgs(WARN, args) }
func (imp *impl) Warnf(template string, args ...interface{}) { imp.logf(WARN, template, args) }
func (imp *impl) Warnw(msg string, kvs ...interface{}) { imp.logw(WARN, msg, kvs) }
func (imp *impl) Error(args ...interface{}) { imp.logArgs(ERROR, args) }
func (imp *impl) Errorf(template string, args ...interface{}) { imp.logf(ERROR, template, args) }
func (imp *impl) Errorw(msg string, kvs ...interface{}) { imp.logw(ERROR, msg, kvs) }

func (imp *impl) logArgs(level Level, args []interface{}) {
	if level < imp.level.Get() {
		return
	}
	imp.write(level, fmt.Sprint(args...), nil)
}

func (imp *impl) logf(level Level, template string, args []interface{}) {
	if level < imp.level.Get() {
		return
	}
	imp.write(level, fmt.Sprintf(template, args...), nil)
}

func (imp *impl) logw(level Level, msg string, kvs []interface{}) {
	if level < imp.level.Get() {
		return
	}
	imp.write(level, msg, fieldsFromPairs(kvs))
}

// fieldsFromPairs reads alternating keys and values. A trailing key without a value is kept with
// an error in place of the value.
func fieldsFromPairs(kvs []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(kvs)+1)/2)
	for i := 0; i < len(kvs); i += 2 {
		key := fmt.Sprint(kvs[i])
		if i+1 == len(kvs) {
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, kvs[i+1]))
	}
	return fields
}

// write must be called exactly two frames below the exported logging method so the caller
// recorded is the code that logged.
func (imp *impl) write(level Level, msg string, fields []zapcore.Field) {
	now := time.Now()
	if imp.inUTC {
		now = now.UTC()
	}
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       now,
		LoggerName: imp.name,
		Message:    msg,
		Caller:     callerOfLogMethod(),
	}

	for _, appender := range imp.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// callerOfLogMethod skips itself, write, the level helper and the exported method.
func callerOfLogMethod() zapcore.EntryCaller {
	const skip = 4
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return zapcore.EntryCaller{}
	}
	caller := zapcore.EntryCaller{Defined: true, PC: pc, File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		caller.Function = fn.Name()
	}
	return caller
}
