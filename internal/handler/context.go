package handler

import (
	"github.com/hauntess/server/internal/config"
	"github.com/hauntess/server/internal/data"
	"github.com/hauntess/server/internal/haunt"
	"github.com/hauntess/server/internal/simhost"
	"go.uber.org/zap"
)

// Feedback receives command replies. Console sessions implement it.
type Feedback interface {
	Send(line string)
	Reply(format string, args ...any)
}

// Deps holds shared dependencies injected into every command.
type Deps struct {
	Config     *config.Config
	Log        *zap.Logger
	Host       *simhost.Host
	Controller *haunt.Controller
	Content    *data.ContentTable
}
