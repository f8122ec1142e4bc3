package messaging_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/messaging"
	"go.karabo.dev/control/messaging/inproc"
)

func startInstance(t *testing.T, broker messaging.Broker, id string) *messaging.Instance {
	t.Helper()

	inst := messaging.NewInstance(id, "test", broker)
	require.NoError(t, inst.Start(context.Background()))
	t.Cleanup(inst.Stop)

	return inst
}

func TestCallInvokesRemoteSlotAndReturnsReply(t *testing.T) {
	broker := inproc.New()
	defer broker.Close()

	server := startInstance(t, broker, "server")
	server.RegisterSlot("double", []hash.Tag{hash.TagInt32}, func(args *hash.Hash) (*hash.Hash, error) {
		n, err := args.GetInt32("a1")
		require.NoError(t, err)

		out := hash.New()
		require.NoError(t, out.Set("result", n*2))

		return out, nil
	})

	client := startInstance(t, broker, "client")

	args := hash.New()
	require.NoError(t, args.Set("a1", int32(21)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reply, err := client.Call(ctx, "server", "double", args)
	require.NoError(t, err)
	require.NotNil(t, reply)

	n, err := reply.GetInt32("result")
	require.NoError(t, err)
	assert.Equal(t, int32(42), n)
}

func TestCallReportsArgumentMismatch(t *testing.T) {
	broker := inproc.New()
	defer broker.Close()

	server := startInstance(t, broker, "server")
	server.RegisterSlot("needsInt", []hash.Tag{hash.TagInt32}, func(args *hash.Hash) (*hash.Hash, error) {
		return nil, nil
	})

	client := startInstance(t, broker, "client")

	args := hash.New()
	require.NoError(t, args.Set("a1", "not an int"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.Call(ctx, "server", "needsInt", args)
	require.Error(t, err)
	assert.ErrorIs(t, err, messaging.ErrArgumentMismatch)
}

func TestCallTimesOutWhenNoSlotRegistered(t *testing.T) {
	broker := inproc.New()
	defer broker.Close()

	client := startInstance(t, broker, "lonely")
	_ = startInstance(t, broker, "server")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.Call(ctx, "server", "nonexistent", hash.New())
	assert.ErrorIs(t, err, messaging.ErrTimeout)
}

func TestGlobalSlotBroadcastsToAllSubscribers(t *testing.T) {
	broker := inproc.New()
	defer broker.Close()

	received := make(chan string, 2)

	a := startInstance(t, broker, "a")
	a.RegisterGlobalSlot("announce", nil, func(args *hash.Hash) (*hash.Hash, error) {
		s, _ := args.GetString("msg")
		received <- "a:" + s
		return nil, nil
	})

	b := startInstance(t, broker, "b")
	b.RegisterGlobalSlot("announce", nil, func(args *hash.Hash) (*hash.Hash, error) {
		s, _ := args.GetString("msg")
		received <- "b:" + s
		return nil, nil
	})

	sender := startInstance(t, broker, "sender")
	sig := sender.RegisterSignal("announce")
	_ = sig

	env := messaging.NewEnvelope()
	require.NoError(t, env.Body.Set("msg", "hello"))
	require.NoError(t, env.Header.Set(messaging.HeaderTarget, "announce"))

	require.NoError(t, broker.Publish(context.Background(), messaging.ExchangeGlobalSlots, "announce", env))

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case s := <-received:
			seen[s] = true
		case <-time.After(time.Second):
			t.Fatal("expected both global slots to fire")
		}
	}

	assert.True(t, seen["a:hello"])
	assert.True(t, seen["b:hello"])
}

func TestTopologyTracksHeartbeatsAndForgetsOnGone(t *testing.T) {
	broker := inproc.New()
	defer broker.Close()

	watcher := startInstance(t, broker, "watcher")
	topo := messaging.NewTopology(3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = topo.Run(ctx, watcher) }()
	time.Sleep(20 * time.Millisecond)

	hb := hash.New()
	require.NoError(t, hb.Set("instanceId", "worker-1"))
	env := messaging.NewEnvelope()
	env.Body = hb
	require.NoError(t, env.Header.Set(messaging.HeaderTarget, messaging.EventHeartbeat))

	require.NoError(t, broker.Publish(ctx, messaging.ExchangeGlobalSlots, messaging.EventHeartbeat, env))
	time.Sleep(20 * time.Millisecond)

	assert.True(t, topo.Alive("worker-1"))

	goneEnv := messaging.NewEnvelope()
	goneEnv.Body = hb
	require.NoError(t, goneEnv.Header.Set(messaging.HeaderTarget, messaging.EventInstanceGone))
	require.NoError(t, broker.Publish(ctx, messaging.ExchangeGlobalSlots, messaging.EventInstanceGone, goneEnv))
	time.Sleep(20 * time.Millisecond)

	assert.False(t, topo.Alive("worker-1"))
}
