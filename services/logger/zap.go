package logsvc

import (
	"go.uber.org/zap"

	"github.com/shepherdcrm/shepherd/core"
	"github.com/shepherdcrm/shepherd/core/user"
)

// ZapLogger logs structured messages locally. It reports nothing to an error
// tracker and is meant for development and tests.
type ZapLogger struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

var _ core.Logger = (*ZapLogger)(nil)

func NewZapLogger(conf *core.Config) (*ZapLogger, error) {
	var logger *zap.Logger
	var err error
	if conf.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return &ZapLogger{logger: logger, sugar: logger.Sugar()}, nil
}

func (l *ZapLogger) Enable(enabled bool) {
	if enabled {
		l.sugar = l.logger.Sugar()
	} else {
		l.sugar = zap.NewNop().Sugar()
	}
}

// expected fmt: msg | error, map[string]interface{}, user.User
func (l *ZapLogger) keysAndValues(args []interface{}) []interface{} {
	kvs := make([]interface{}, 0, 2*len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case error:
			kvs = append(kvs, "error", v)
		case user.User:
			kvs = append(kvs, "userID", v.ID, "username", v.Username)
		case map[string]interface{}:
			for key, val := range v {
				kvs = append(kvs, key, val)
			}
		default:
			kvs = append(kvs, "arg", v)
		}
	}
	return kvs
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	l.sugar.Debugw(msg, l.keysAndValues(args)...)
}

func (l *ZapLogger) Info(msg string, args ...interface{}) {
	l.sugar.Infow(msg, l.keysAndValues(args)...)
}

func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	l.sugar.Warnw(msg, l.keysAndValues(args)...)
}

func (l *ZapLogger) Error(msg string, args ...interface{}) {
	l.sugar.Errorw(msg, l.keysAndValues(args)...)
}

func (l *ZapLogger) Fatal(msg string, args ...interface{}) {
	l.sugar.Fatalw(msg, l.keysAndValues(args)...)
}
