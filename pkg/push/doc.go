// Package push composes push notifications from device-wide limits and
// publishes them over MQTT.
//
// A Composer compares an observation against the DevicePushLimit records of
// its device and produces one Notification per crossed threshold. A Notifier
// encodes notifications and limit updates with a wire.Codec and hands them to
// a Publisher; MQTTPublisher is the paho-backed implementation.
//
// Topics are rooted at a configurable prefix:
//
//	<prefix>/devices/<urn>/alerts   one message per notification
//	<prefix>/devices/<urn>/limits   retained, the full limit set
package push
