// Package mqtt provides MQTT communication capabilities for the bot.
// It supports publish/subscribe patterns with request/response functionality.
package mqtt

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	requestPrefix  = "pancy/request/"
	responsePrefix = "pancy/response/"
)

// MqttRequest represents an MQTT request message
type MqttRequest struct {
	CorrelationID string          `json:"correlationId"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// MqttResponse represents an MQTT response message
type MqttResponse struct {
	CorrelationID string          `json:"correlationId"`
	Data          json.RawMessage `json:"data"`
	Error         string          `json:"error,omitempty"`
}

// transport is the broker connection underneath a communicator.
type transport interface {
	publish(topic string, payload []byte) error
	subscribe(topic string, handler func(topic string, payload []byte)) error
	unsubscribe(topic string) error
	connected() bool
	close()
}

// MqttCommunicator handles MQTT communication
type MqttCommunicator struct {
	conn             transport
	responseHandlers map[string]func(MqttResponse)
	mu               sync.RWMutex
	clientID         string
}

var (
	communicator *MqttCommunicator
	once         sync.Once
)

// Init initializes the global MQTT communicator. An empty host keeps
// traffic on an in-process bus.
func Init(host, port, username, password, clientID string) *MqttCommunicator {
	once.Do(func() {
		if host == "" {
			logger.Warn("MQTT_Host vacío, los eventos solo se entregarán dentro del proceso", "MQTT")
			communicator = NewLocal(clientID)
			return
		}
		communicator = NewMqttCommunicator(host, port, username, password, clientID)
	})
	return communicator
}

// Get returns the global MQTT communicator
func Get() *MqttCommunicator {
	return communicator
}

// NewMqttCommunicator creates a new MQTT communicator
func NewMqttCommunicator(host, port, username, password, clientID string) *MqttCommunicator {
	uniqueID := fmt.Sprintf("%s_%s", clientID, uuid.New().String())

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", host, port)).
		SetClientID(uniqueID).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", clientID), "MQTT")
		}).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	client := mqtt.NewClient(opts)

	token := client.Connect()
	if token.WaitTimeout(10*time.Second) && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error de conexión MQTT: %v", token.Error()), "MQTT")
	}

	return newCommunicator(&pahoTransport{client: client}, clientID)
}

// NewLocal returns a communicator whose messages never leave the process.
func NewLocal(clientID string) *MqttCommunicator {
	return newCommunicator(newLocalBus(), clientID)
}

func newCommunicator(conn transport, clientID string) *MqttCommunicator {
	return &MqttCommunicator{
		conn:             conn,
		responseHandlers: make(map[string]func(MqttResponse)),
		clientID:         clientID,
	}
}

// Destroy closes the MQTT connection
func (mc *MqttCommunicator) Destroy() {
	if mc.conn.connected() {
		mc.conn.close()
		logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
	} else {
		logger.Warn("El cliente MQTT no estaba conectado, no se necesita cerrar.", "MQTT")
	}
}

// IsConnected returns true if connected to the broker
func (mc *MqttCommunicator) IsConnected() bool {
	return mc.conn.connected()
}

// Publish sends a message to a topic
func (mc *MqttCommunicator) Publish(topic string, payload any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return mc.conn.publish(topic, jsonData)
}

// Request sends a request and decodes the response data into out, which may be nil.
func (mc *MqttCommunicator) Request(topic string, payload any, out any, timeout time.Duration) error {
	correlationID := uuid.New().String()
	requestTopic := requestPrefix + topic
	responseTopic := fmt.Sprintf("%s%s/%s", responsePrefix, topic, correlationID)

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	responseChan := make(chan MqttResponse, 1)
	errChan := make(chan error, 1)

	// Set up response handler
	mc.mu.Lock()
	mc.responseHandlers[correlationID] = func(response MqttResponse) {
		select {
		case responseChan <- response:
		default:
		}
	}
	mc.mu.Unlock()

	// Clean up handler when done
	defer func() {
		mc.mu.Lock()
		delete(mc.responseHandlers, correlationID)
		mc.mu.Unlock()
		_ = mc.conn.unsubscribe(responseTopic)
	}()

	err = mc.conn.subscribe(responseTopic, func(_ string, body []byte) {
		var response MqttResponse
		if err := json.Unmarshal(body, &response); err != nil {
			select {
			case errChan <- err:
			default:
			}
			return
		}

		mc.mu.RLock()
		handler, exists := mc.responseHandlers[response.CorrelationID]
		mc.mu.RUnlock()

		if exists {
			handler(response)
		}
	})
	if err != nil {
		return err
	}

	if err := mc.Publish(requestTopic, MqttRequest{CorrelationID: correlationID, Payload: raw}); err != nil {
		return err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	// Wait for response or timeout
	select {
	case response := <-responseChan:
		if response.Error != "" {
			return errors.New(response.Error)
		}
		if out == nil || len(response.Data) == 0 {
			return nil
		}
		return json.Unmarshal(response.Data, out)
	case err := <-errChan:
		return err
	case <-timer.C:
		return fmt.Errorf("la petición a '%s' ha expirado (timeout)", topic)
	}
}

// RequestHandler handles one request. The payload is the raw JSON sent by the caller.
type RequestHandler func(topic string, payload json.RawMessage) (any, error)

// On registers a handler for a request topic
func (mc *MqttCommunicator) On(requestTopic string, callback RequestHandler) error {
	topic := requestPrefix + requestTopic

	err := mc.conn.subscribe(topic, func(receivedTopic string, body []byte) {
		var request MqttRequest
		if err := json.Unmarshal(body, &request); err != nil {
			logger.Error(fmt.Sprintf("Error parsing MQTT request: %v", err), "MQTT")
			return
		}

		actualTopic := strings.TrimPrefix(receivedTopic, requestPrefix)
		responseTopic := fmt.Sprintf("%s%s/%s", responsePrefix, actualTopic, request.CorrelationID)

		response := MqttResponse{CorrelationID: request.CorrelationID}

		data, err := callback(actualTopic, request.Payload)
		if err == nil {
			response.Data, err = json.Marshal(data)
		}
		if err != nil {
			response.Data = nil
			response.Error = err.Error()
		}

		if err := mc.Publish(responseTopic, response); err != nil {
			logger.Error(fmt.Sprintf("Error enviando respuesta a %s: %v", responseTopic, err), "MQTT")
		}
	})
	if err != nil {
		logger.Error(fmt.Sprintf("Error subscribing to topic %s: %v", topic, err), "MQTT")
	}
	return err
}

// Subscribe subscribes to a topic with a message handler
func (mc *MqttCommunicator) Subscribe(topic string, handler func(topic string, payload []byte)) error {
	return mc.conn.subscribe(topic, handler)
}

// Unsubscribe unsubscribes from a topic
func (mc *MqttCommunicator) Unsubscribe(topic string) error {
	return mc.conn.unsubscribe(topic)
}

type pahoTransport struct {
	client mqtt.Client
}

func (p *pahoTransport) publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 0, false, payload)
	token.Wait()
	return token.Error()
}

func (p *pahoTransport) subscribe(topic string, handler func(string, []byte)) error {
	token := p.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	token.Wait()
	return token.Error()
}

func (p *pahoTransport) unsubscribe(topic string) error {
	token := p.client.Unsubscribe(topic)
	token.Wait()
	return token.Error()
}

func (p *pahoTransport) connected() bool {
	return p.client != nil && p.client.IsConnected()
}

func (p *pahoTransport) close() {
	p.client.Disconnect(250)
}

// localBus delivers messages to in-process subscribers, one goroutine per delivery.
type localBus struct {
	mu     sync.RWMutex
	subs   map[string]func(string, []byte)
	closed bool
}

func newLocalBus() *localBus {
	return &localBus{subs: make(map[string]func(string, []byte))}
}

func (b *localBus) publish(topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return errors.New("mqtt: bus cerrado")
	}
	for pattern, handler := range b.subs {
		if topicMatch(pattern, topic) {
			body := append([]byte(nil), payload...)
			go handler(topic, body)
		}
	}
	return nil
}

func (b *localBus) subscribe(topic string, handler func(string, []byte)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = handler
	return nil
}

func (b *localBus) unsubscribe(topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, topic)
	return nil
}

func (b *localBus) connected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.closed
}

func (b *localBus) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[string]func(string, []byte){}
}

// topicMatch checks if a received topic matches a pattern (with wildcards)
// '+' matches exactly one topic level
// '#' matches zero or more topic levels and must be the last character
func topicMatch(pattern, topic string) bool {
	patternParts := strings.Split(pattern, "/")
	topicParts := strings.Split(topic, "/")

	patternLen := len(patternParts)
	topicLen := len(topicParts)

	for i := 0; i < patternLen; i++ {
		if patternParts[i] == "#" {
			return true
		}

		if i >= topicLen {
			return false
		}

		if patternParts[i] == "+" {
			continue
		}

		if patternParts[i] != topicParts[i] {
			return false
		}
	}

	return patternLen == topicLen
}
