package utils

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// NewLogger builds the service logfmt logger filtered at levelName
// (debug, info, warn or error; anything else means info).
func NewLogger(w io.Writer, levelName string) log.Logger {
	var logger log.Logger
	{
		logger = log.NewLogfmtLogger(w)
		logger = log.NewSyncLogger(logger)
		logger = level.NewFilter(logger, levelOption(levelName))
		logger = log.With(logger,
			"svc", "frontend-gateway",
			"ts", log.DefaultTimestampUTC,
			"caller", log.DefaultCaller,
		)
	}
	return logger
}

func levelOption(name string) level.Option {
	switch name {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
