package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	EventCreated = "created"
	EventDeleted = "deleted"

	publishTimeout = 5 * time.Second
)

// Event describes a change to a media item.
type Event struct {
	Type       string    `json:"type"`
	MediaID    string    `json:"media_id"`
	Title      string    `json:"title,omitempty"`
	Timestamps int       `json:"timestamps,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher delivers media change events. Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// MQTT connection handler
var connectHandler paho.OnConnectHandler = func(client paho.Client) {
	log.Info().Msg("connected to MQTT broker")
}

// MQTT connection lost handler
var connectLostHandler paho.ConnectionLostHandler = func(client paho.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// Notifier publishes events to <prefix>/<media_id>/<type>. The media_id level
// is escaped; the payload carries it verbatim.
type Notifier struct {
	client      paho.Client
	topicPrefix string
}

var _ Publisher = (*Notifier)(nil)

// Connect dials the broker and returns a Notifier bound to it.
func Connect(brokerURL, clientID, topicPrefix string) (*Notifier, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return NewNotifier(client, topicPrefix), nil
}

func NewNotifier(client paho.Client, topicPrefix string) *Notifier {
	return &Notifier{client: client, topicPrefix: strings.TrimSuffix(topicPrefix, "/")}
}

// topicEscaper percent-encodes the characters MQTT gives meaning to inside a
// topic, plus '%' itself so the encoding stays reversible.
var topicEscaper = strings.NewReplacer("%", "%25", "/", "%2F", "+", "%2B", "#", "%23", "\x00", "%00")

func (n *Notifier) Topic(event Event) string {
	return fmt.Sprintf("%s/%s/%s", n.topicPrefix, topicEscaper.Replace(event.MediaID), event.Type)
}

func (n *Notifier) Publish(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("[mqtt] failed to encode event")
		return
	}

	timeout := publishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	topic := n.Topic(event)
	token := n.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(timeout) {
		log.Warn().Str("topic", topic).Msg("[mqtt] publish timed out")
		return
	}
	if err := token.Error(); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("[mqtt] publish failed")
		return
	}
	log.Debug().Str("topic", topic).Msg("[mqtt] event published")
}

// Close disconnects from the broker, waiting up to 250ms for in-flight work.
func (n *Notifier) Close() {
	n.client.Disconnect(250)
	log.Info().Msg("MQTT client disconnected")
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) {}
