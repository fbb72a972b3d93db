package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/renewly/renewly/internal/app/api/server"
	"github.com/renewly/renewly/internal/app/service/account"
	"github.com/renewly/renewly/internal/app/service/checkpoint"
	"github.com/renewly/renewly/internal/app/service/reminder"
	"github.com/renewly/renewly/internal/app/service/scheduler"
	"github.com/renewly/renewly/internal/app/service/subscription"
	"github.com/renewly/renewly/internal/platform/db"
	"github.com/renewly/renewly/internal/platform/email"
	"github.com/renewly/renewly/pkg/config"
	"github.com/renewly/renewly/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	checkpoint.Module,
	email.Module,
	reminder.Module,
	scheduler.Module,
	subscription.Module,
	account.Module,
)
