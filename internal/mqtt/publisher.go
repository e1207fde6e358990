package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/i474232898/weather-mirror/internal/weather"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Publisher pushes the latest weather view to an MQTT broker.
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	enabled     bool
	unit        weather.Unit
	hour12      bool
	logger      *zap.Logger
	now         func() time.Time
}

type PublisherConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Enabled     bool
	Unit        weather.Unit
	Hour12      bool
}

// NewPublisher connects to the broker. A disabled config yields a Publisher
// whose methods do nothing.
func NewPublisher(cfg PublisherConfig, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("mqtt")
	if !cfg.Enabled {
		return &Publisher{enabled: false, logger: logger}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Warn("MQTT connection lost", zap.Error(err))
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Info("MQTT connected", zap.String("broker", cfg.Broker))
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.WaitTimeout(publishTimeout) && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return newPublisher(client, cfg, logger), nil
}

func newPublisher(client mqtt.Client, cfg PublisherConfig, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		client:      client,
		topicPrefix: cfg.TopicPrefix,
		enabled:     true,
		unit:        cfg.Unit,
		hour12:      cfg.Hour12,
		logger:      logger,
		now:         time.Now,
	}
}

// PublishModel publishes m as a retained view plus a few scalar topics for
// simple subscribers. It matches scheduler.Listener.
func (p *Publisher) PublishModel(m *weather.Model) {
	if !p.enabled || m == nil {
		return
	}
	if err := p.Publish(weather.BuildView(m, p.unit, p.hour12, p.now())); err != nil {
		p.logger.Warn("failed to publish weather", zap.Error(err))
	}
}

// Publish sends v to <prefix>/view (retained JSON) and the scalar topics.
func (p *Publisher) Publish(v weather.View) error {
	if !p.enabled {
		return nil
	}

	topics := map[string]interface{}{
		"current/temp":        v.Current.Temp,
		"current/feels_like":  v.Current.FeelsLike,
		"current/humidity":    v.Current.Humidity,
		"current/description": v.Current.Description,
		"current/icon":        v.Current.Icon,
		"from_cache":          v.FromCache,
	}
	for name, value := range topics {
		topic := fmt.Sprintf("%s/%s", p.topicPrefix, name)
		token := p.client.Publish(topic, 0, true, fmt.Sprintf("%v", value))
		token.WaitTimeout(publishTimeout)
		if token.Error() != nil {
			p.logger.Warn("failed to publish", zap.String("topic", topic), zap.Error(token.Error()))
		}
	}

	viewJSON, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal view: %w", err)
	}

	token := p.client.Publish(p.topicPrefix+"/view", 1, true, viewJSON)
	token.WaitTimeout(publishTimeout)
	if token.Error() != nil {
		return fmt.Errorf("failed to publish view: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(250)
	}
}
