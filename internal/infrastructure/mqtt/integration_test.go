//go:build integration

package mqtt

import (
	"context"
	"testing"
	"time"
)

// Integration tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func connectForTest(t *testing.T, clientID string) *Client {
	t.Helper()
	cfg := testConfig()
	cfg.Broker.ClientID = clientID
	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestIntegration_ConnectAndHealth(t *testing.T) {
	client := connectForTest(t, "irclimate-int-health")

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestIntegration_CommandRoundtrip(t *testing.T) {
	client := connectForTest(t, "irclimate-int-roundtrip")

	received := make(chan string, 1)
	err := client.Subscribe(Topics{}.AllCommands(), 1, func(topic string, _ []byte) error {
		id, _ := Topics{}.DeviceFromTopic(topic)
		received <- id
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !client.HasSubscription(Topics{}.AllCommands()) {
		t.Error("subscription not tracked")
	}

	time.Sleep(100 * time.Millisecond)
	if err := client.Publish(Topics{}.Command("int-ac"), []byte(`{"mode":"cool"}`), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case id := <-received:
		if id != "int-ac" {
			t.Errorf("device = %q, want int-ac", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("command not received")
	}

	if err := client.Unsubscribe(Topics{}.AllCommands()); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after unsubscribe", client.SubscriptionCount())
	}
}

func TestIntegration_Close(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "irclimate-int-close"
	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}
