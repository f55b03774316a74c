package app

import (
	"github.com/gravitlabs/storefront/config"
	"github.com/gravitlabs/storefront/internal/notify"
	"github.com/gravitlabs/storefront/internal/store"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

type DBProvider interface {
	DB() *gorm.DB
}

type ConfigProvider interface {
	Config() *config.AppConfig
}

type HubProvider interface {
	Hub() *store.Hub
}

type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

type NotifyProvider interface {
	Dispatcher() *notify.Dispatcher
}

// AppContext is the full application surface handed to subsystems that
// need more than one provider.
type AppContext interface {
	DBProvider
	ConfigProvider
	HubProvider
	SchedulerProvider
	NotifyProvider
}
