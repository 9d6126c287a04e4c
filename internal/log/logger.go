package log

import (
	"go.uber.org/zap"
)

// Logger is a no-op until InitLogger is called.
var Logger = zap.NewNop()

// InitLogger installs a development logger when dev is set and a production
// JSON logger otherwise.
func InitLogger(dev bool) {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	Logger = l
}

func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
