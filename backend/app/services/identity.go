package services

import (
	"runtime"
	"strings"
	"sync"
	"time"

	"fleetdesk/backend/app/models"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/host"
)

const zeroMac = "00:00:00:00:00:00"

// IdentityFields carries a partial identity update. Empty fields (after
// trimming) never erase stored data.
type IdentityFields struct {
	MachineName     string
	IpAddress       string
	MacAddress      string
	OperatingSystem string
	Location        string
}

// IdentityRegistry keeps one identity record per agent and reconciles
// repeat registrations by MAC address and machine name. Records are
// never deleted.
type IdentityRegistry struct {
	mu     sync.RWMutex
	agents map[string]*models.AgentIdentity

	defaultMachine string
	defaultOS      string
}

func NewIdentityRegistry() *IdentityRegistry {
	machine := "localhost"
	osName := runtime.GOOS
	if info, err := host.Info(); err == nil {
		if info.Hostname != "" {
			machine = info.Hostname
		}
		if info.Platform != "" {
			osName = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
		}
	}
	return &IdentityRegistry{
		agents:         make(map[string]*models.AgentIdentity),
		defaultMachine: machine,
		defaultOS:      osName,
	}
}

// DefaultMachineName is the host-environment machine name used to fill
// empty records.
func (r *IdentityRegistry) DefaultMachineName() string { return r.defaultMachine }

// DefaultOS is the host-environment operating system string used to
// fill empty records.
func (r *IdentityRegistry) DefaultOS() string { return r.defaultOS }

// NormalizeMac maps a MAC consisting only of zeros and separators to
// the empty string so it never participates in identity matching.
func NormalizeMac(mac string) string {
	mac = strings.TrimSpace(mac)
	stripped := strings.NewReplacer(":", "", "-", "", ".", "").Replace(mac)
	if strings.Trim(stripped, "0") == "" {
		return ""
	}
	return mac
}

// ResolveOrCreate returns the id of an existing agent matching the
// given MAC (and machine name, when both are present), falling back to
// a bare machine-name match, and finally to a freshly generated id.
// MAC+machine is the strongest signal; no match always creates a new
// agent rather than risking a merge of two different machines.
func (r *IdentityRegistry) ResolveOrCreate(mac, machineName string) string {
	mac = NormalizeMac(mac)
	machineName = strings.TrimSpace(machineName)

	r.mu.RLock()
	if mac != "" {
		for id, a := range r.agents {
			if strings.EqualFold(a.MacAddress, mac) &&
				(machineName == "" || strings.EqualFold(a.MachineName, machineName)) {
				r.mu.RUnlock()
				return id
			}
		}
	}
	if machineName != "" {
		for id, a := range r.agents {
			if strings.EqualFold(a.MachineName, machineName) {
				r.mu.RUnlock()
				return id
			}
		}
	}
	r.mu.RUnlock()
	return uuid.NewString()
}

// Upsert creates the record when absent, filling gaps with host
// defaults so it is never empty, and otherwise overwrites only the
// incoming fields that are non-empty after trimming. LastHeartbeat is
// refreshed on every call.
func (r *IdentityRegistry) Upsert(agentID string, f IdentityFields) models.AgentIdentity {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[agentID]
	if !ok {
		a = &models.AgentIdentity{
			Id:              agentID,
			MachineName:     fallback(f.MachineName, r.defaultMachine),
			IpAddress:       fallback(f.IpAddress, "127.0.0.1"),
			MacAddress:      fallback(NormalizeMac(f.MacAddress), zeroMac),
			OperatingSystem: fallback(f.OperatingSystem, r.defaultOS),
			Location:        strings.TrimSpace(f.Location),
		}
		r.agents[agentID] = a
	} else {
		merge(&a.MachineName, f.MachineName)
		merge(&a.IpAddress, f.IpAddress)
		merge(&a.MacAddress, NormalizeMac(f.MacAddress))
		merge(&a.OperatingSystem, f.OperatingSystem)
		merge(&a.Location, f.Location)
	}
	a.LastHeartbeat = &now
	return *a
}

// Touch records contact from an agent, creating a default record for an
// unseen id.
func (r *IdentityRegistry) Touch(agentID string) models.AgentIdentity {
	return r.Upsert(agentID, IdentityFields{})
}

func (r *IdentityRegistry) Get(agentID string) (models.AgentIdentity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[agentID]
	if !ok {
		return models.AgentIdentity{}, false
	}
	return *a, true
}

// List returns all identities; with onlineOnly set, only those whose
// last heartbeat falls within windowMinutes of now. Records without a
// heartbeat are excluded from the filtered view.
func (r *IdentityRegistry) List(onlineOnly bool, windowMinutes int) []models.AgentIdentity {
	if windowMinutes < 0 {
		windowMinutes = -windowMinutes
	}
	cutoff := time.Now().UTC().Add(-time.Duration(windowMinutes) * time.Minute)

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.AgentIdentity, 0, len(r.agents))
	for _, a := range r.agents {
		if onlineOnly && (a.LastHeartbeat == nil || a.LastHeartbeat.Before(cutoff)) {
			continue
		}
		out = append(out, *a)
	}
	return out
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func merge(dst *string, v string) {
	if s := strings.TrimSpace(v); s != "" {
		*dst = s
	}
}
