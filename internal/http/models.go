package http

import "github.com/Flarenzy/whats-my-ip/internal/domain"

// IPResponse is returned by the REST lookup and used in Swagger.
type IPResponse struct {
	IP      string `json:"ip" example:"203.0.113.7"`
	Present bool   `json:"present" example:"true"`
	Display string `json:"display" example:"Your IP Address is: 203.0.113.7"`
	Version string `json:"version" example:"ipv4"`
	Scope   string `json:"scope" example:"public"`
}

// ErrorResponse is a simple envelope for error messages.
type ErrorResponse struct {
	Error string `json:"error" example:"lookup failed"`
}

func resultToResponse(r domain.LookupResult) IPResponse {
	info := domain.Classify(r.IP)
	return IPResponse{
		IP:      r.IP,
		Present: r.Present,
		Display: r.Display(),
		Version: info.Version,
		Scope:   string(info.Scope),
	}
}
