package initialize

import (
	"encoding/json"
	"net/http"

	"fleetdesk/backend/app/controllers"
	"fleetdesk/backend/app/models"
	"fleetdesk/backend/app/services"
	"fleetdesk/backend/app/store"
	"fleetdesk/backend/config"
	"fleetdesk/backend/global"
	"fleetdesk/backend/logger"
	"fleetdesk/backend/router"
)

// App wires every store, service and controller once at startup. Tests
// construct a fresh App (or the pieces they need) instead of sharing
// process-global state.
type App struct {
	Cfg    *config.Config
	Router http.Handler

	Identity *services.IdentityRegistry
	Mailbox  *services.Mailbox

	Metrics       *store.Latest[models.SystemMetrics]
	PortLatest    *store.Latest[models.NetworkPortSnapshot]
	PortHistory   *store.History[models.NetworkPortSnapshot]
	Enhanced      *store.Latest[json.RawMessage]
	SoftwareItems *store.History[models.InstalledSoftwareInfo]
}

func Build(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	global.Config = *cfg
	global.Logger = logger.New(cfg.Log)

	app := NewApp(cfg)
	return app, nil
}

// NewApp assembles the application around an already-loaded config.
func NewApp(cfg *config.Config) *App {
	identity := services.NewIdentityRegistry()
	mailbox := services.NewMailbox()

	metrics := store.NewLatest[models.SystemMetrics]()
	portLatest := store.NewLatest[models.NetworkPortSnapshot]()
	portHistory := store.NewHistory(cfg.Store.PortHistoryMax, func(a, b models.NetworkPortSnapshot) bool {
		return a.Timestamp.After(b.Timestamp)
	})
	enhanced := store.NewLatest[json.RawMessage]()
	software := store.NewHistory[models.InstalledSoftwareInfo](0, nil)

	agentCtrl := controllers.NewAgentController(identity, metrics)
	cmdCtrl := controllers.NewCommandController(mailbox)
	portCtrl := controllers.NewNetworkPortController(portLatest, portHistory, identity)
	enhancedCtrl := controllers.NewEnhancedDataController(enhanced, metrics, identity)
	softwareCtrl := controllers.NewInstalledSoftwareController(software, identity)
	adminCtrl := controllers.NewAdminController(identity, metrics, portLatest, portHistory)

	return &App{
		Cfg:           cfg,
		Router:        router.New(agentCtrl, cmdCtrl, portCtrl, enhancedCtrl, softwareCtrl, adminCtrl),
		Identity:      identity,
		Mailbox:       mailbox,
		Metrics:       metrics,
		PortLatest:    portLatest,
		PortHistory:   portHistory,
		Enhanced:      enhanced,
		SoftwareItems: software,
	}
}
