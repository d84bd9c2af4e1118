package server

import (
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/wfunc/tetris/game"
	"github.com/wfunc/tetris/logger"
	"github.com/wfunc/tetris/network"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// startTestServer binds a relay on an ephemeral port and returns it with
// its host and port. The monitor stays nil so tests never touch the
// process-global metric registry.
func startTestServer(t *testing.T) (*GameServer, string, int) {
	t.Helper()

	srv := NewGameServer("127.0.0.1:0", nil, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("starting server: %v", err)
	}
	t.Cleanup(srv.Stop)

	host, portStr, err := net.SplitHostPort(srv.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return srv, host, port
}

func connectClient(t *testing.T, host string, port int, name string) *network.GameClient {
	t.Helper()

	client := network.NewGameClient()
	if err := client.Connect(host, port, name); err != nil {
		t.Fatalf("connecting %s: %v", name, err)
	}
	t.Cleanup(client.Disconnect)
	return client
}

func waitForOpponent(t *testing.T, client *network.GameClient, wantScore int) string {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		id, state := client.OpponentState()
		if state != nil && state.Score == wantScore {
			return id
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for a relayed snapshot")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGameServer_AssignsSequentialIDs(t *testing.T) {
	_, host, port := startTestServer(t)

	a := connectClient(t, host, port, "Alice")
	b := connectClient(t, host, port, "Bob")
	c := connectClient(t, host, port, "Carol")

	if a.PlayerID() != "player_1" || b.PlayerID() != "player_2" || c.PlayerID() != "player_3" {
		t.Fatalf("expected player_1..player_3, got %q %q %q",
			a.PlayerID(), b.PlayerID(), c.PlayerID())
	}
}

func TestGameServer_RelaysToAllOthers(t *testing.T) {
	srv, host, port := startTestServer(t)

	a := connectClient(t, host, port, "Alice")
	b := connectClient(t, host, port, "Bob")
	c := connectClient(t, host, port, "Carol")

	if srv.PlayerCount() != 3 {
		t.Fatalf("expected 3 registered peers, got %d", srv.PlayerCount())
	}

	snapshot := game.NewEngineWithSeed(1).Snapshot()
	snapshot.Score = 1234
	if err := a.SendStateUpdate(snapshot); err != nil {
		t.Fatalf("sending update: %v", err)
	}

	// Everyone except the sender receives the update, stamped with the
	// sender's id.
	if id := waitForOpponent(t, b, 1234); id != "player_1" {
		t.Fatalf("Bob expected an update from player_1, got %q", id)
	}
	if id := waitForOpponent(t, c, 1234); id != "player_1" {
		t.Fatalf("Carol expected an update from player_1, got %q", id)
	}

	// The sender never sees its own update reflected back.
	time.Sleep(50 * time.Millisecond)
	if id, state := a.OpponentState(); state != nil {
		t.Fatalf("sender received its own update back from %q", id)
	}
}

func TestGameServer_LastWriteWins(t *testing.T) {
	_, host, port := startTestServer(t)

	a := connectClient(t, host, port, "Alice")
	b := connectClient(t, host, port, "Bob")

	first := game.NewEngineWithSeed(1).Snapshot()
	first.Score = 100
	second := game.NewEngineWithSeed(1).Snapshot()
	second.Score = 200

	if err := a.SendStateUpdate(first); err != nil {
		t.Fatalf("sending first update: %v", err)
	}
	if err := a.SendStateUpdate(second); err != nil {
		t.Fatalf("sending second update: %v", err)
	}

	waitForOpponent(t, b, 200)
	_, state := b.OpponentState()
	if state.Score != 200 {
		t.Fatalf("expected the latest snapshot to win, got score %d", state.Score)
	}
}

func TestGameServer_RejectsNonConnectFirstFrame(t *testing.T) {
	_, host, port := startTestServer(t)

	raw, err := net.Dial("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn := network.NewTCPConnection(raw)
	defer conn.Close()

	msg, err := network.NewStateUpdateMessage("", game.NewEngineWithSeed(1).Snapshot())
	if err != nil {
		t.Fatalf("building message: %v", err)
	}
	if err := conn.Send(msg); err != nil {
		t.Fatalf("send: %v", err)
	}

	// The server closes the socket without a reply.
	if reply, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected the connection to close, got a %q reply", reply.Type)
	}
}

func TestGameServer_RemovesPeerOnDisconnect(t *testing.T) {
	srv, host, port := startTestServer(t)

	a := connectClient(t, host, port, "Alice")
	connectClient(t, host, port, "Bob")

	a.Disconnect()

	deadline := time.Now().Add(2 * time.Second)
	for srv.PlayerCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 1 peer after disconnect, got %d", srv.PlayerCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGameServer_StopUnblocksSilentConnection(t *testing.T) {
	srv, host, port := startTestServer(t)

	// A peer that connects but never sends its handshake frame leaves its
	// worker blocked in the first read.
	raw, err := net.Dial("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer raw.Close()

	// Let the accept loop hand the connection to a worker.
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		srv.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop hung on a connection that never completed its handshake")
	}
}

func TestGameServer_StopIsIdempotent(t *testing.T) {
	srv, host, port := startTestServer(t)
	connectClient(t, host, port, "Alice")

	srv.Stop()
	srv.Stop()

	if _, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), 200*time.Millisecond); err == nil {
		t.Error("listener should be closed after Stop")
	}
}
