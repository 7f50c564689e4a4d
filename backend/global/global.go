package global

import (
	"fleetdesk/backend/config"

	"github.com/rs/zerolog"
)

var (
	Config config.Config
	Logger zerolog.Logger
)
