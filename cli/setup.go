package cli

import (
	"github.com/absmach/fldash"
	"github.com/absmach/fldash/dashboard"
	"github.com/absmach/fldash/pkg/mqtt"
	"github.com/absmach/supermq/pkg/errors"
)

var (
	defOffset uint64 = 0
	defLimit  uint64 = 10

	errNotLoggedIn  = errors.New("not logged in, run the login command first")
	errNoSubscriber = errors.New("no MQTT broker configured")

	svc        dashboard.Service
	cfg        fldash.Config
	configPath string
	subscriber func() (mqtt.PubSub, error)
)

// SetService sets the service every command runs against.
func SetService(s dashboard.Service) {
	svc = s
}

// SetConfig sets the loaded client configuration and the path it is saved to.
func SetConfig(path string, c fldash.Config) {
	configPath = path
	cfg = c
}

func token() (string, error) {
	if cfg.Auth.Token == "" {
		return "", errNotLoggedIn
	}

	return cfg.Auth.Token, nil
}

// SetSubscriber sets how the watch command connects to the MQTT broker.
func SetSubscriber(connect func() (mqtt.PubSub, error)) {
	subscriber = connect
}
