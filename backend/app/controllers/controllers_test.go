package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"fleetdesk/backend/app/models"
	"fleetdesk/backend/config"
	"fleetdesk/backend/global"
	"fleetdesk/backend/initialize"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	global.Logger = zerolog.New(io.Discard)
	os.Exit(m.Run())
}

func newApp() *initialize.App {
	return initialize.NewApp(&config.Config{
		Store: config.Store{PortHistoryMax: 50, OnlineWindowMinutes: 5},
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	app := newApp()
	rec := do(t, app.Router, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRegisterAllocatesAndReusesIdentity(t *testing.T) {
	app := newApp()

	first := do(t, app.Router, http.MethodPost, "/api/Agent/register", map[string]string{
		"machineName": "Host-A",
		"macAddress":  "AA:BB:CC:00:11:22",
		"ipAddress":   "10.0.0.5",
	}, nil)
	require.Equal(t, http.StatusOK, first.Code)
	firstID := decode[map[string]any](t, first)["agentId"].(string)
	require.NotEmpty(t, firstID)

	// Same MAC and machine name resolve to the same agent.
	again := do(t, app.Router, http.MethodPost, "/api/Agent/register", map[string]string{
		"machineName": "Host-A",
		"macAddress":  "aa:bb:cc:00:11:22",
	}, nil)
	assert.Equal(t, firstID, decode[map[string]any](t, again)["agentId"])

	// A zeroed MAC falls back to the machine-name match.
	zeroMac := do(t, app.Router, http.MethodPost, "/api/Agent/register", map[string]string{
		"machineName": "Host-A",
		"macAddress":  "00:00:00:00:00:00",
	}, nil)
	assert.Equal(t, firstID, decode[map[string]any](t, zeroMac)["agentId"])

	// An unknown machine gets a fresh id.
	other := do(t, app.Router, http.MethodPost, "/api/Agent/register", map[string]string{
		"machineName": "Host-B",
	}, nil)
	assert.NotEqual(t, firstID, decode[map[string]any](t, other)["agentId"])
}

func TestRegisterHeadersOverrideBody(t *testing.T) {
	app := newApp()

	rec := do(t, app.Router, http.MethodPost, "/api/Agent/register", map[string]string{
		"machineName": "FromBody",
	}, map[string]string{
		"X-Machine-Name": "FromHeader",
		"X-Location":     "Rack 4",
	})
	agentID := decode[map[string]any](t, rec)["agentId"].(string)

	stored := do(t, app.Router, http.MethodGet, "/api/Admin/agents/"+agentID, nil, nil)
	require.Equal(t, http.StatusOK, stored.Code)
	agent := decode[models.AgentIdentity](t, stored)
	assert.Equal(t, "FromHeader", agent.MachineName)
	assert.Equal(t, "Rack 4", agent.Location)
}

func TestSubmitMetrics(t *testing.T) {
	app := newApp()

	missing := do(t, app.Router, http.MethodPost, "/api/Agent/metrics", map[string]any{"cpuUsage": 10.0}, nil)
	assert.Equal(t, http.StatusBadRequest, missing.Code)

	ok := do(t, app.Router, http.MethodPost, "/api/Agent/metrics", models.SystemMetrics{
		AgentId:  "agent-1",
		CpuUsage: 42.5,
	}, nil)
	require.Equal(t, http.StatusOK, ok.Code)

	fetched := do(t, app.Router, http.MethodGet, "/api/Admin/agents/agent-1/metrics", nil, nil)
	require.Equal(t, http.StatusOK, fetched.Code)
	metrics := decode[models.SystemMetrics](t, fetched)
	assert.Equal(t, 42.5, metrics.CpuUsage)

	// Metrics submission counts as contact: the identity record exists now.
	agent := do(t, app.Router, http.MethodGet, "/api/Admin/agents/agent-1", nil, nil)
	assert.Equal(t, http.StatusOK, agent.Code)
}

func TestAdminMetricsEmptyShape(t *testing.T) {
	app := newApp()
	rec := do(t, app.Router, http.MethodGet, "/api/Admin/agents/unknown/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(bytes.TrimSpace(rec.Body.Bytes())))
}

func TestHeartbeatTouchesIdentity(t *testing.T) {
	app := newApp()
	rec := do(t, app.Router, http.MethodPost, "/api/Agent/heartbeat/agent-7", nil, map[string]string{
		"X-Ip-Address": "192.168.7.7",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	agent := decode[models.AgentIdentity](t, do(t, app.Router, http.MethodGet, "/api/Admin/agents/agent-7", nil, nil))
	assert.Equal(t, "192.168.7.7", agent.IpAddress)
	assert.NotNil(t, agent.LastHeartbeat)
}

func TestCommandLifecycleOverHTTP(t *testing.T) {
	app := newApp()

	queued := do(t, app.Router, http.MethodPost, "/api/Command/queue", models.CommandRequest{
		CommandId:     "cmd-1",
		TargetAgentId: "agent-9",
		CommandType:   "KillProcess",
		Parameters:    map[string]string{"processId": "4711", "command": "taskkill /PID 4711"},
	}, nil)
	require.Equal(t, http.StatusOK, queued.Code)
	assert.Equal(t, "cmd-1", decode[map[string]string](t, queued)["commandId"])

	// Immediately after enqueue the result row reports Pending.
	pendingLookup := do(t, app.Router, http.MethodGet, "/api/Command/cmd-1", nil, nil)
	require.Equal(t, http.StatusOK, pendingLookup.Code)
	assert.Equal(t, models.StatusPending, decode[models.CommandResponse](t, pendingLookup).Status)

	delivered := decode[[]models.CommandRequest](t, do(t, app.Router, http.MethodGet, "/api/Command/pending/agent-9", nil, nil))
	require.Len(t, delivered, 1)
	assert.Equal(t, "KillProcess", delivered[0].CommandType)
	assert.Equal(t, "4711", delivered[0].Parameters["processId"])

	// Queue drained: a second poll is empty.
	again := decode[[]models.CommandRequest](t, do(t, app.Router, http.MethodGet, "/api/Command/pending/agent-9", nil, nil))
	assert.Empty(t, again)

	submitted := do(t, app.Router, http.MethodPost, "/api/Command/result", models.CommandResponse{
		CommandId:       "cmd-1",
		AgentId:         "agent-9",
		Status:          models.StatusCompleted,
		Output:          "Process terminated",
		ExecutionTimeMs: 150,
	}, nil)
	require.Equal(t, http.StatusOK, submitted.Code)

	final := decode[models.CommandResponse](t, do(t, app.Router, http.MethodGet, "/api/Command/cmd-1", nil, nil))
	assert.Equal(t, models.StatusCompleted, final.Status)
	assert.Equal(t, "Process terminated", final.Output)
	assert.Equal(t, int64(150), final.ExecutionTimeMs)
}

func TestCommandValidationAndNotFound(t *testing.T) {
	app := newApp()

	noTarget := do(t, app.Router, http.MethodPost, "/api/Command", models.CommandRequest{CommandType: "Reboot"}, nil)
	assert.Equal(t, http.StatusBadRequest, noTarget.Code)

	noCommandID := do(t, app.Router, http.MethodPost, "/api/Command/result", models.CommandResponse{AgentId: "A"}, nil)
	assert.Equal(t, http.StatusBadRequest, noCommandID.Code)

	noAgentID := do(t, app.Router, http.MethodPost, "/api/Command/result", models.CommandResponse{CommandId: "c"}, nil)
	assert.Equal(t, http.StatusBadRequest, noAgentID.Code)

	unknown := do(t, app.Router, http.MethodGet, "/api/Command/never-seen", nil, nil)
	assert.Equal(t, http.StatusNotFound, unknown.Code)
}

func TestNetworkPortFlow(t *testing.T) {
	app := newApp()

	missing := do(t, app.Router, http.MethodGet, "/api/NetworkPort/missing-agent/latest", nil, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	noAgent := do(t, app.Router, http.MethodPost, "/api/NetworkPort", map[string]any{"connections": []any{}}, nil)
	assert.Equal(t, http.StatusBadRequest, noAgent.Code)

	ts := time.Date(2024, 12, 5, 10, 30, 0, 0, time.UTC)
	submitted := do(t, app.Router, http.MethodPost, "/api/NetworkPort", models.NetworkPortSnapshot{
		AgentId:   "agent-1",
		Timestamp: ts,
		Connections: []models.NetworkPortConnection{{
			LocalEndpoint:  "127.0.0.1",
			LocalPort:      8080,
			RemoteEndpoint: "192.168.1.10",
			RemotePort:     9000,
			ProcessId:      1234,
			ProcessName:    "nginx",
			Protocol:       "TCP",
			State:          "Established",
		}},
	}, nil)
	require.Equal(t, http.StatusOK, submitted.Code)

	latest := decode[models.NetworkPortSnapshot](t, do(t, app.Router, http.MethodGet, "/api/NetworkPort/agent-1/latest", nil, nil))
	assert.True(t, latest.Timestamp.Equal(ts))
	require.Len(t, latest.Connections, 1)
	assert.Equal(t, 1234, latest.Connections[0].ProcessId)
	assert.Equal(t, "nginx", latest.Connections[0].ProcessName)
	assert.Equal(t, 8080, latest.Connections[0].LocalPort)

	// An older snapshot is kept in history but does not displace latest.
	older := do(t, app.Router, http.MethodPost, "/api/NetworkPort", models.NetworkPortSnapshot{
		AgentId:   "agent-1",
		Timestamp: ts.Add(-time.Hour),
	}, nil)
	require.Equal(t, http.StatusOK, older.Code)

	latest = decode[models.NetworkPortSnapshot](t, do(t, app.Router, http.MethodGet, "/api/NetworkPort/agent-1/latest", nil, nil))
	assert.True(t, latest.Timestamp.Equal(ts))

	history := decode[[]models.NetworkPortSnapshot](t, do(t, app.Router, http.MethodGet, "/api/NetworkPort/agent-1", nil, nil))
	require.Len(t, history, 2)
	assert.True(t, history[0].Timestamp.After(history[1].Timestamp))

	// Submitting counts as a heartbeat.
	agent := do(t, app.Router, http.MethodGet, "/api/Admin/agents/agent-1", nil, nil)
	assert.Equal(t, http.StatusOK, agent.Code)
}

func TestNetworkPortHistoryEmpty(t *testing.T) {
	app := newApp()
	rec := do(t, app.Router, http.MethodGet, "/api/NetworkPort/quiet-agent", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(bytes.TrimSpace(rec.Body.Bytes())))
}

func TestEnhancedDataEnrichment(t *testing.T) {
	app := newApp()

	rec := do(t, app.Router, http.MethodPost, "/api/EnhancedData/submit", map[string]any{
		"agentId": "agent-5",
		"systemInfo": map[string]any{
			"machineName": "Workstation-5",
			"osName":      "Windows 11 Pro",
		},
		"metrics": map[string]any{
			"cpuUsage":    33.5,
			"memoryUsage": 60.1,
			"topProcesses": []any{
				map[string]any{"name": "chrome", "id": 4242.0, "cpuUsage": 12.0},
				map[string]any{"id": 1.0}, // nameless entries are skipped
			},
		},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	agent := decode[models.AgentIdentity](t, do(t, app.Router, http.MethodGet, "/api/Admin/agents/agent-5", nil, nil))
	assert.Equal(t, "Workstation-5", agent.MachineName)
	assert.Equal(t, "Windows 11 Pro", agent.OperatingSystem)

	metrics := decode[models.SystemMetrics](t, do(t, app.Router, http.MethodGet, "/api/Admin/agents/agent-5/metrics", nil, nil))
	assert.Equal(t, 33.5, metrics.CpuUsage)
	require.Len(t, metrics.TopProcesses, 1)
	assert.Equal(t, "chrome", metrics.TopProcesses[0].Name)
	assert.Equal(t, 4242, metrics.TopProcesses[0].Id)

	sysInfo := decode[map[string]any](t, do(t, app.Router, http.MethodGet, "/api/EnhancedData/agent-5/system-info", nil, nil))
	assert.Equal(t, "Workstation-5", sysInfo["machineName"])

	// No windowsInfo section submitted: the fallback shape is returned.
	winInfo := decode[map[string]any](t, do(t, app.Router, http.MethodGet, "/api/EnhancedData/agent-5/windows-info", nil, nil))
	assert.Equal(t, "agent-5", winInfo["agentId"])
}

func TestEnhancedDataHardwareSections(t *testing.T) {
	app := newApp()

	rec := do(t, app.Router, http.MethodPost, "/api/EnhancedData/submit", map[string]any{
		"agentId": "agent-7",
		"hardDiskInfo": map[string]any{
			"disks": []any{map[string]any{"name": "C:", "freeGb": 120.5}},
		},
		"winCoreInfo": map[string]any{"kernelVersion": "10.0.22631"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	diskInfo := decode[map[string]any](t, do(t, app.Router, http.MethodGet, "/api/EnhancedData/agent-7/harddisk-info", nil, nil))
	disks, ok := diskInfo["disks"].([]any)
	require.True(t, ok)
	require.Len(t, disks, 1)

	coreInfo := decode[map[string]any](t, do(t, app.Router, http.MethodGet, "/api/EnhancedData/agent-7/wincore-info", nil, nil))
	assert.Equal(t, "10.0.22631", coreInfo["kernelVersion"])

	// No antivirusInfo section submitted: the fallback shape is returned.
	avInfo := decode[map[string]any](t, do(t, app.Router, http.MethodGet, "/api/EnhancedData/agent-7/antivirus-info", nil, nil))
	assert.Equal(t, "agent-7", avInfo["agentId"])
	assert.Empty(t, avInfo["antivirus"])
}

func TestEnhancedDataToleratesMalformedPayload(t *testing.T) {
	app := newApp()

	// No agentId: accepted and dropped.
	rec := do(t, app.Router, http.MethodPost, "/api/EnhancedData/submit", map[string]any{"systemInfo": map[string]any{}}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Malformed metrics section: identity enrichment still applies.
	rec = do(t, app.Router, http.MethodPost, "/api/EnhancedData/submit", map[string]any{
		"agentId":    "agent-6",
		"systemInfo": map[string]any{"machineName": "Box-6"},
		"metrics":    "not-an-object",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	agent := decode[models.AgentIdentity](t, do(t, app.Router, http.MethodGet, "/api/Admin/agents/agent-6", nil, nil))
	assert.Equal(t, "Box-6", agent.MachineName)
}

func TestInstalledSoftwareFlow(t *testing.T) {
	app := newApp()

	noAgent := do(t, app.Router, http.MethodPost, "/api/InstalledSoftware", map[string]any{"softwareList": []any{}}, nil)
	assert.Equal(t, http.StatusBadRequest, noAgent.Code)

	empty := do(t, app.Router, http.MethodGet, "/api/InstalledSoftware/agent-1/latest", nil, nil)
	require.Equal(t, http.StatusOK, empty.Code)
	assert.Equal(t, "[]", string(bytes.TrimSpace(empty.Body.Bytes())))

	for _, name := range []string{"7zip", "firefox"} {
		rec := do(t, app.Router, http.MethodPost, "/api/InstalledSoftware", map[string]any{
			"agentId":      "agent-1",
			"softwareList": []any{map[string]any{"name": name}},
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	history := decode[[]models.InstalledSoftwareInfo](t, do(t, app.Router, http.MethodGet, "/api/InstalledSoftware/agent-1", nil, nil))
	assert.Len(t, history, 2)

	latest := decode[models.InstalledSoftwareInfo](t, do(t, app.Router, http.MethodGet, "/api/InstalledSoftware/agent-1/latest", nil, nil))
	require.Len(t, latest.SoftwareList, 1)
	assert.Contains(t, string(latest.SoftwareList[0]), "firefox")
}

func TestAdminPortsSummary(t *testing.T) {
	app := newApp()

	do(t, app.Router, http.MethodPost, "/api/NetworkPort", models.NetworkPortSnapshot{
		AgentId:     "agent-1",
		Connections: []models.NetworkPortConnection{{LocalPort: 22}, {LocalPort: 443}},
	}, nil)

	summary := decode[[]map[string]any](t, do(t, app.Router, http.MethodGet, "/api/Admin/ports/summary", nil, nil))
	require.Len(t, summary, 1)
	assert.Equal(t, "agent-1", summary[0]["agentId"])
	assert.Equal(t, float64(2), summary[0]["portCount"])

	all := decode[map[string]any](t, do(t, app.Router, http.MethodGet, "/api/Admin/ports", nil, nil))
	assert.Contains(t, all, "agent-1")
}

func TestAdminListAgentsOnlineFilter(t *testing.T) {
	app := newApp()

	do(t, app.Router, http.MethodPost, "/api/Agent/heartbeat/agent-1", nil, nil)

	list := decode[[]models.AgentIdentity](t, do(t, app.Router, http.MethodGet, "/api/Admin/agents", nil, nil))
	require.Len(t, list, 1)

	online := decode[[]models.AgentIdentity](t, do(t, app.Router, http.MethodGet, "/api/Admin/agents?onlineOnly=true&minutes=5", nil, nil))
	assert.Len(t, online, 1)
}
