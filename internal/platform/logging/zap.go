package logging

import "go.uber.org/zap"

// New returns a JSON production logger, or a console development logger
// when production is false.
func New(production bool) (*zap.Logger, error) {
	if production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
