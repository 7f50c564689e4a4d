package router

import (
	"net/http"

	"fleetdesk/backend/app/controllers"
	appmw "fleetdesk/backend/app/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func New(agentCtrl *controllers.AgentController, cmdCtrl *controllers.CommandController, portCtrl *controllers.NetworkPortController, enhancedCtrl *controllers.EnhancedDataController, softwareCtrl *controllers.InstalledSoftwareController, adminCtrl *controllers.AdminController) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(appmw.Logging)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	// agent-facing
	r.Route("/api/Agent", func(r chi.Router) {
		r.Post("/register", agentCtrl.Register)
		r.Post("/metrics", agentCtrl.SubmitMetrics)
		r.Post("/data", agentCtrl.SubmitData)
		r.Post("/heartbeat/{agentId}", agentCtrl.Heartbeat)
	})

	r.Route("/api/Command", func(r chi.Router) {
		r.Post("/", cmdCtrl.Enqueue)
		r.Post("/queue", cmdCtrl.Enqueue)
		r.Post("/result", cmdCtrl.SubmitResult)
		r.Get("/pending/{agentId}", cmdCtrl.Pending)
		r.Get("/{commandId}", cmdCtrl.GetById)
	})

	r.Route("/api/NetworkPort", func(r chi.Router) {
		r.Post("/", portCtrl.Submit)
		r.Get("/{agentId}/latest", portCtrl.GetLatest)
		r.Get("/{agentId}", portCtrl.GetHistory)
	})

	r.Route("/api/EnhancedData", func(r chi.Router) {
		r.Post("/submit", enhancedCtrl.Submit)
		r.Get("/{agentId}/system-info", enhancedCtrl.GetSystemInfo)
		r.Get("/{agentId}/windows-info", enhancedCtrl.GetWindowsInfo)
		r.Get("/{agentId}/harddisk-info", enhancedCtrl.GetHardDiskInfo)
		r.Get("/{agentId}/antivirus-info", enhancedCtrl.GetAntivirusInfo)
		r.Get("/{agentId}/wincore-info", enhancedCtrl.GetWinCoreInfo)
	})

	r.Route("/api/InstalledSoftware", func(r chi.Router) {
		r.Post("/", softwareCtrl.Submit)
		r.Get("/{agentId}/latest", softwareCtrl.GetLatest)
		r.Get("/{agentId}", softwareCtrl.Get)
	})

	// admin-facing
	r.Route("/api/Admin", func(r chi.Router) {
		r.Get("/agents", adminCtrl.ListAgents)
		r.Get("/agents/{agentId}", adminCtrl.GetAgent)
		r.Get("/agents/{agentId}/metrics", adminCtrl.GetAgentMetrics)
		r.Get("/agents/{agentId}/metrics/aggregated", adminCtrl.GetAgentMetricsAggregated)
		r.Get("/agents/{agentId}/metrics/average", adminCtrl.GetAgentMetricsAggregated)
		r.Get("/agents/{agentId}/metrics/trend", adminCtrl.GetAgentMetricsTrend)
		r.Get("/agents/{agentId}/ports", adminCtrl.GetAgentPorts)
		r.Get("/agents/{agentId}/ports/latest", adminCtrl.GetAgentPortsLatest)
		r.Get("/ports", adminCtrl.GetAllPorts)
		r.Get("/ports/summary", adminCtrl.GetPortsSummary)
	})

	return r
}
