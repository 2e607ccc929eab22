package push

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher delivers a payload to a topic.
type Publisher interface {
	PublishWith(topic string, payload []byte, retain bool) error
}

// MQTTConfig configures an MQTTPublisher.
type MQTTConfig struct {
	// BrokerURL is mqtt://, tcp://, ssl://, tls://, ws:// or wss://, with
	// optional user info.
	BrokerURL string

	// ClientID defaults to "biq-push-<time>".
	ClientID string

	// QoS for published messages.
	QoS byte

	// ConnectTimeout bounds the initial connection. Defaults to 10s.
	ConnectTimeout time.Duration

	// Logger receives connection events. Optional.
	Logger *slog.Logger
}

// MQTTPublisher publishes over a paho MQTT client.
type MQTTPublisher struct {
	cli    mqtt.Client
	qos    byte
	logger *slog.Logger
}

// brokerServer converts a broker URL into a paho server string.
func brokerServer(u *url.URL) (string, error) {
	switch u.Scheme {
	case "mqtt", "tcp":
		return "tcp://" + u.Host, nil
	case "ssl", "tls":
		return "ssl://" + u.Host, nil
	case "ws", "wss":
		return u.Scheme + "://" + u.Host + u.Path, nil
	default:
		return "", fmt.Errorf("unsupported broker scheme %q", u.Scheme)
	}
}

// DialMQTT connects to the broker.
func DialMQTT(cfg MQTTConfig) (*MQTTPublisher, error) {
	u, err := url.Parse(cfg.BrokerURL)
	if err != nil {
		return nil, fmt.Errorf("parse broker url: %w", err)
	}
	server, err := brokerServer(u)
	if err != nil {
		return nil, err
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "biq-push-" + time.Now().Format("150405.000")
	}
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	p := &MQTTPublisher{qos: cfg.QoS, logger: cfg.Logger}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(server)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(timeout)
	opts.OnConnect = func(mqtt.Client) { p.infoLog("mqtt connected", "broker", server) }
	opts.OnConnectionLost = func(_ mqtt.Client, err error) { p.errorLog("mqtt connection lost", "error", err) }
	if u.User != nil {
		pw, _ := u.User.Password()
		opts.SetUsername(u.User.Username())
		opts.SetPassword(pw)
	}
	if u.Scheme == "ssl" || u.Scheme == "tls" || u.Scheme == "wss" {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	cli := mqtt.NewClient(opts)
	t := cli.Connect()
	if !t.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connect to %s: timed out after %s", server, timeout)
	}
	if err := t.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", server, err)
	}

	p.cli = cli
	return p, nil
}

// NewMQTTPublisher wraps an already connected client.
func NewMQTTPublisher(cli mqtt.Client, qos byte, logger *slog.Logger) *MQTTPublisher {
	return &MQTTPublisher{cli: cli, qos: qos, logger: logger}
}

// PublishWith publishes payload and waits for the broker to accept it.
func (p *MQTTPublisher) PublishWith(topic string, payload []byte, retain bool) error {
	t := p.cli.Publish(topic, p.qos, retain, payload)
	if t.Wait() && t.Error() != nil {
		return t.Error()
	}
	return nil
}

// Close disconnects, allowing up to 250ms for in-flight work.
func (p *MQTTPublisher) Close() {
	p.cli.Disconnect(250)
}

func (p *MQTTPublisher) infoLog(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *MQTTPublisher) errorLog(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}

var _ Publisher = (*MQTTPublisher)(nil)
