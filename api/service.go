package api

import "FleetRentOps/internal/serviceiface"

type GatewayService struct {
	config map[string]interface{}
}

func NewGatewayService(cfg map[string]interface{}) serviceiface.Service {
	return &GatewayService{config: cfg}
}

func (s *GatewayService) Name() string {
	return "gateway"
}

func (s *GatewayService) Start() error {
	go StartGateway(s.upstreams("recon_upstreams"), s.upstreams("rental_upstreams"))
	return nil
}

func (s *GatewayService) Stop() error {
	return nil
}

func (s *GatewayService) upstreams(key string) []string {
	raw, ok := s.config[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if u, ok := v.(string); ok && u != "" {
			out = append(out, u)
		}
	}
	return out
}
