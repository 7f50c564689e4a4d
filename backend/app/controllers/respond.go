package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"fleetdesk/backend/app/services"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	http.Error(w, msg, http.StatusBadRequest)
}

// headerIdentity reads the identity side-channel headers an agent may
// attach to any call. Non-empty header values take precedence over the
// body-supplied equivalents.
func headerIdentity(r *http.Request, body services.IdentityFields) services.IdentityFields {
	override := func(header, fallback string) string {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			return v
		}
		return fallback
	}
	return services.IdentityFields{
		MachineName:     override("X-Machine-Name", body.MachineName),
		IpAddress:       override("X-Ip-Address", body.IpAddress),
		MacAddress:      override("X-Mac-Address", body.MacAddress),
		OperatingSystem: body.OperatingSystem,
		Location:        override("X-Location", body.Location),
	}
}
