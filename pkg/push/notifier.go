package push

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/limit"
	"github.com/qbiq/biq-go/pkg/model"
	"github.com/qbiq/biq-go/pkg/wire"
)

// DefaultTopicPrefix roots every topic when Options.TopicPrefix is empty.
const DefaultTopicPrefix = "biq"

// Options configures a Notifier.
type Options struct {
	// TopicPrefix roots every topic. Defaults to DefaultTopicPrefix.
	TopicPrefix string

	// Codec encodes payloads. Defaults to wire.JSON().
	Codec *wire.Codec

	// Logger receives debug messages. Optional.
	Logger *slog.Logger
}

// Notifier publishes notifications and limit sets.
type Notifier struct {
	pub    Publisher
	codec  *wire.Codec
	prefix string
	logger *slog.Logger
}

// NewNotifier creates a Notifier publishing through pub.
func NewNotifier(pub Publisher, opts Options) *Notifier {
	n := &Notifier{
		pub:    pub,
		codec:  opts.Codec,
		prefix: opts.TopicPrefix,
		logger: opts.Logger,
	}
	if n.codec == nil {
		n.codec = wire.JSON()
	}
	if n.prefix == "" {
		n.prefix = DefaultTopicPrefix
	}
	return n
}

var topicEscaper = strings.NewReplacer("/", "_", "+", "_", "#", "_")

// AlertTopic returns the topic notifications for device are published to.
func (n *Notifier) AlertTopic(device ident.DeviceURN) string {
	return n.prefix + "/devices/" + topicEscaper.Replace(device.String()) + "/alerts"
}

// LimitsTopic returns the retained topic holding device's limit set.
func (n *Notifier) LimitsTopic(device ident.DeviceURN) string {
	return n.prefix + "/devices/" + topicEscaper.Replace(device.String()) + "/limits"
}

// Notify composes notifications for obs and publishes each one. It returns
// the number published. Publishing stops at the first failure.
func (n *Notifier) Notify(obs model.Observation, limits []limit.DevicePushLimit) (int, error) {
	return n.NotifyNamed("", obs, limits)
}

// NotifyNamed is Notify with the device labelled name in titles.
func (n *Notifier) NotifyNamed(name string, obs model.Observation, limits []limit.DevicePushLimit) (int, error) {
	notes := Composer{Name: name}.Compose(obs, limits)
	topic := n.AlertTopic(obs.DeviceID)

	for i, note := range notes {
		data, err := n.codec.Encode(note)
		if err != nil {
			return i, err
		}
		if err := n.pub.PublishWith(topic, data, false); err != nil {
			return i, fmt.Errorf("publish %s: %w", topic, err)
		}
		n.debugLog("notification published", "topic", topic, "limit", note.Limit.Type.String())
	}
	return len(notes), nil
}

// ErrNoDevice is returned when a limit set has no device.
var ErrNoDevice = errors.New("limit set has no device")

// SyncLimits publishes the retained limit set of device.
func (n *Notifier) SyncLimits(device ident.DeviceURN, limits []limit.DevicePushLimit) error {
	if device.IsZero() {
		return ErrNoDevice
	}
	data, err := n.codec.Encode(NewLimitSet(device, limits))
	if err != nil {
		return err
	}

	topic := n.LimitsTopic(device)
	if err := n.pub.PublishWith(topic, data, true); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	n.debugLog("limits synced", "topic", topic, "count", len(limits))
	return nil
}

// debugLog logs a debug message if logging is enabled.
func (n *Notifier) debugLog(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Debug(msg, args...)
	}
}
