package dtos

type HealthCheckResponse struct {
	Status string `json:"status"`
}

type RootResponse struct {
	Message      string `json:"message"`
	APIEndpoints string `json:"api_endpoints"`
}
