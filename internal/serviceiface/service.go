package serviceiface

// Service is the contract every managed service (logger, recon, rental,
// cron, gateway) implements so the app manager can start and stop them
// in sequence.
type Service interface {
	Name() string
	Start() error
	Stop() error
}
