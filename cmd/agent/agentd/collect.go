package agentd

import (
	"net"
	"runtime"
	"sort"
	"time"

	"fleetdesk/backend/app/dto"
	"fleetdesk/backend/app/models"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	gopsnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// CollectIdentity gathers machine name, primary MAC and local IP for
// registration. Missing pieces stay empty and the backend fills in
// its own fallbacks.
func CollectIdentity() dto.RegisterRequest {
	req := dto.RegisterRequest{OperatingSystem: runtime.GOOS}
	if info, err := host.Info(); err == nil {
		req.MachineName = info.Hostname
		if info.Platform != "" {
			req.OperatingSystem = info.Platform + " " + info.PlatformVersion
		}
	}
	req.MacAddress, req.IpAddress = primaryInterface()
	return req
}

// primaryInterface returns the MAC and IPv4 of the first non-loopback
// interface that is up and carries an address.
func primaryInterface() (mac, ip string) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		if len(iface.HardwareAddr) == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP.To4() == nil {
				continue
			}
			return iface.HardwareAddr.String(), ipNet.IP.String()
		}
	}
	return "", ""
}

// CollectMetrics samples CPU, memory and disk usage plus the five
// busiest processes by CPU.
func CollectMetrics(agentID string) models.SystemMetrics {
	metrics := models.SystemMetrics{
		AgentId:   agentID,
		Timestamp: time.Now().UTC(),
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		metrics.CpuUsage = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		metrics.MemoryUsage = vm.UsedPercent
	}
	if usage, err := disk.Usage("/"); err == nil {
		metrics.DiskUsage = usage.UsedPercent
	}
	if counters, err := gopsnet.IOCounters(false); err == nil && len(counters) > 0 {
		metrics.NetworkSent = int64(counters[0].BytesSent)
		metrics.NetworkReceived = int64(counters[0].BytesRecv)
	}
	metrics.TopProcesses = topProcesses(5)
	return metrics
}

func topProcesses(limit int) []models.ProcessInfo {
	procs, err := process.Processes()
	if err != nil {
		return nil
	}
	infos := make([]models.ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || name == "" {
			continue
		}
		cpuPct, _ := p.CPUPercent()
		memPct, _ := p.MemoryPercent()
		infos = append(infos, models.ProcessInfo{
			Name:        name,
			Id:          int(p.Pid),
			CpuUsage:    cpuPct,
			MemoryUsage: float64(memPct),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].CpuUsage > infos[j].CpuUsage })
	if len(infos) > limit {
		infos = infos[:limit]
	}
	return infos
}

// CollectPorts snapshots listening and established TCP connections.
func CollectPorts(agentID string) dto.NetworkPortData {
	data := dto.NetworkPortData{
		AgentId:     agentID,
		Timestamp:   time.Now().UTC(),
		Connections: []models.NetworkPortConnection{},
	}
	conns, err := gopsnet.Connections("tcp")
	if err != nil {
		return data
	}
	names := map[int32]string{}
	for _, conn := range conns {
		if conn.Status != "LISTEN" && conn.Status != "ESTABLISHED" {
			continue
		}
		entry := models.NetworkPortConnection{
			LocalEndpoint:  conn.Laddr.IP,
			RemoteEndpoint: conn.Raddr.IP,
			LocalPort:      int(conn.Laddr.Port),
			RemotePort:     int(conn.Raddr.Port),
			ProcessId:      int(conn.Pid),
			State:          conn.Status,
			Protocol:       "TCP",
		}
		if conn.Pid > 0 {
			name, ok := names[conn.Pid]
			if !ok {
				if p, err := process.NewProcess(conn.Pid); err == nil {
					name, _ = p.Name()
				}
				names[conn.Pid] = name
			}
			entry.ProcessName = name
		}
		data.Connections = append(data.Connections, entry)
	}
	return data
}
