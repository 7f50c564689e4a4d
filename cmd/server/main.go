package main

import (
	"flag"
	"os"

	"fleetdesk/backend/global"
	"fleetdesk/backend/initialize"
	"fleetdesk/backend/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	app, err := initialize.Build(*configPath)
	if err != nil {
		os.Stderr.WriteString("init: " + err.Error() + "\n")
		os.Exit(1)
	}

	global.Logger.Info().
		Str("host", app.Cfg.HTTP.Host).
		Int("port", app.Cfg.HTTP.Port).
		Msg("admin server stub listening")
	if err := server.StartHTTPServer(app.Cfg.HTTP.Host, app.Cfg.HTTP.Port, app.Router); err != nil {
		global.Logger.Fatal().Err(err).Msg("http server stopped")
	}
}
