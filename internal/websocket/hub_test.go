package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mintlabs/mint-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHub_PublishReachesSubscribers(t *testing.T) {
	hub := startHub(t)

	subscriber := NewClient(hub, nil)
	bystander := NewClient(hub, nil)
	hub.Add(subscriber)
	hub.Add(bystander)
	hub.Subscribe(subscriber, TopicSamples)

	hub.Publish(TopicSamples, NewSampleAddedMessage(models.SampleRow{ID: 7, Metadata: "ch2"}))

	var msg Message
	require.NoError(t, json.Unmarshal(receive(t, subscriber), &msg))
	assert.Equal(t, ActionSampleAdded, msg.Action)

	var row models.SampleRow
	require.NoError(t, json.Unmarshal(msg.Payload, &row))
	assert.Equal(t, int64(7), row.ID)
	assert.Equal(t, "ch2", row.Metadata)

	select {
	case <-bystander.Send:
		t.Fatal("unsubscribed client received a message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := startHub(t)

	c := NewClient(hub, nil)
	hub.Add(c)
	hub.Subscribe(c, TopicSamples)
	hub.Unsubscribe(c, TopicSamples)

	hub.Publish(TopicSamples, NewAckMessage(1))

	select {
	case <-c.Send:
		t.Fatal("client received a message after unsubscribing")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_RemoveEndsClient(t *testing.T) {
	hub := startHub(t)

	c := NewClient(hub, nil)
	hub.Add(c)
	hub.Remove(c)

	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("client not closed after Remove")
	}
	assert.False(t, c.Deliver([]byte("late")), "delivery to a removed client must fail")
}

func TestHub_StopClosesClientsAndUnblocksCallers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := NewClient(hub, nil)
	hub.Add(c)
	hub.Stop()
	hub.Stop()

	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("client not closed after Stop")
	}

	// None of these may block once the hub is stopped.
	other := NewClient(hub, nil)
	hub.Add(other)
	hub.Subscribe(other, TopicSamples)
	hub.Publish(TopicSamples, []byte("x"))
	hub.Remove(other)
}

func TestClient_DeliverFullBuffer(t *testing.T) {
	c := NewClient(nil, nil)
	for i := 0; i < cap(c.Send); i++ {
		require.True(t, c.Deliver([]byte("m")))
	}
	assert.False(t, c.Deliver([]byte("overflow")))
}

func TestNewErrorMessage(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal(NewErrorMessage("bad"), &msg))
	assert.Equal(t, ActionError, msg.Action)
	assert.JSONEq(t, `{"message":"bad"}`, string(msg.Payload))
}
