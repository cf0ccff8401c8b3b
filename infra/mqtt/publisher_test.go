package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t fakeToken) Error() error { return t.err }

type fakeClient struct {
	connected bool
	topic     string
	qos       byte
	retained  bool
	payload   []byte
}

func (c *fakeClient) IsConnected() bool { return c.connected }
func (c *fakeClient) Connect() paho.Token {
	c.connected = true
	return fakeToken{}
}
func (c *fakeClient) Disconnect(uint) { c.connected = false }
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.topic = topic
	c.qos = qos
	c.retained = retained
	c.payload = payload.([]byte)
	return fakeToken{}
}

func TestPublishSchedule(t *testing.T) {
	fake := &fakeClient{}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return fake }
	defer func() { newMQTTClient = orig }()

	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", Topic: "home/battery/plan", QoS: 1, Retain: true})
	require.NoError(t, err)

	payload := SchedulePayload{
		RunID:       "run-1",
		Model:       "netmetering",
		GeneratedAt: time.Now(),
		Yield:       0.38,
		Periods: []PeriodPlan{
			{Index: 0, ChargeKWh: 2.5, SoC: 0.15, Price: 0.0277},
			{Index: 1, DischargeKWh: 3.375, SoC: 0.65, Price: 0.15773},
		},
	}
	require.NoError(t, pub.PublishSchedule(payload))

	assert.Equal(t, "home/battery/plan", fake.topic)
	assert.Equal(t, byte(1), fake.qos)
	assert.True(t, fake.retained)

	var got SchedulePayload
	require.NoError(t, json.Unmarshal(fake.payload, &got))
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Periods, 2)
	assert.Equal(t, 2.5, got.Periods[0].ChargeKWh)

	pub.Close()
	assert.False(t, fake.connected)
}

func TestConfigSetDefaults(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	assert.Equal(t, "wattflex", cfg.ClientID)
	assert.Equal(t, "wattflex/schedule", cfg.Topic)
}
