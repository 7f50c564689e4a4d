package dto

// RegisterRequest is the registration payload sent by an agent. Every
// field is optional; transport headers override body values.
type RegisterRequest struct {
	MachineName     string `json:"machineName"`
	IpAddress       string `json:"ipAddress"`
	MacAddress      string `json:"macAddress"`
	OperatingSystem string `json:"operatingSystem"`
	Location        string `json:"location"`
}
