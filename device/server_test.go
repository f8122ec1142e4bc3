package device_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.karabo.dev/control/device"
	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/messaging"
	"go.karabo.dev/control/messaging/inproc"
	"go.karabo.dev/control/schema"
)

func buildConfigSchema(t *testing.T) *schema.Schema {
	t.Helper()

	s := schema.New("genericDevice")
	require.NoError(t, s.AddLeaf("speed",
		schema.WithValueType(hash.TagInt32),
		schema.WithDefault(int32(0)),
		schema.WithAccessMode(schema.AccessInit|schema.AccessRead|schema.AccessWrite),
	))

	return s
}

func TestServerReconfigureMergesUpdate(t *testing.T) {
	broker := inproc.New()
	defer broker.Close()

	inst := messaging.NewInstance("motor-1", "test", broker)
	require.NoError(t, inst.Start(context.Background()))
	defer inst.Stop()

	s, err := device.NewServer(inst, buildConfigSchema(t), hash.New(), 50*time.Millisecond)
	require.NoError(t, err)

	update := hash.New()
	require.NoError(t, update.Set("speed", "7"))

	require.NoError(t, s.Reconfigure(update))

	speed, err := s.Configuration().GetInt32("speed")
	require.NoError(t, err)
	assert.Equal(t, int32(7), speed)
}

func TestServerSlotsRespondOverTheBus(t *testing.T) {
	broker := inproc.New()
	defer broker.Close()

	serverInst := messaging.NewInstance("motor-2", "test", broker)
	require.NoError(t, serverInst.Start(context.Background()))
	defer serverInst.Stop()

	_, err := device.NewServer(serverInst, buildConfigSchema(t), hash.New(), 50*time.Millisecond)
	require.NoError(t, err)

	client := messaging.NewInstance("client", "test", broker)
	require.NoError(t, client.Start(context.Background()))
	defer client.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	update := hash.New()
	require.NoError(t, update.Set("speed", "42"))

	args := hash.New()
	require.NoError(t, args.Set("a1", update))

	reply, err := client.Call(ctx, "motor-2", device.SlotReconfigure, args)
	require.NoError(t, err)

	speed, err := reply.GetInt32("speed")
	require.NoError(t, err)
	assert.Equal(t, int32(42), speed)

	reply, err = client.Call(ctx, "motor-2", device.SlotGetConfiguration, hash.New())
	require.NoError(t, err)

	speed, err = reply.GetInt32("speed")
	require.NoError(t, err)
	assert.Equal(t, int32(42), speed)
}

func TestServerRunAnnouncesLifecycleAndStopsOnKill(t *testing.T) {
	broker := inproc.New()
	defer broker.Close()

	watcher := messaging.NewInstance("watcher", "test", broker)
	require.NoError(t, watcher.Start(context.Background()))
	defer watcher.Stop()

	events := make(chan string, 4)
	watcher.RegisterGlobalSlot(messaging.EventInstanceNew, nil, func(args *hash.Hash) (*hash.Hash, error) {
		events <- "new"
		return nil, nil
	})
	watcher.RegisterGlobalSlot(messaging.EventInstanceGone, nil, func(args *hash.Hash) (*hash.Hash, error) {
		events <- "gone"
		return nil, nil
	})

	inst := messaging.NewInstance("motor-3", "test", broker)
	require.NoError(t, inst.Start(context.Background()))
	defer inst.Stop()

	s, err := device.NewServer(inst, buildConfigSchema(t), hash.New(), time.Hour)
	require.NoError(t, err)

	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case ev := <-events:
		assert.Equal(t, "new", ev)
	case <-time.After(time.Second):
		t.Fatal("expected instanceNew announcement")
	}

	s.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after Stop")
	}

	select {
	case ev := <-events:
		assert.Equal(t, "gone", ev)
	case <-time.After(time.Second):
		t.Fatal("expected instanceGone announcement")
	}
}
