package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"teachassist/internal/logging"
	"teachassist/internal/server"
	"teachassist/internal/testsupport"
)

func TestDaemonStartServesAPI(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	daemon, err := server.NewDaemon(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewDaemon: %v", err)
	}
	t.Cleanup(func() { _ = daemon.Close() })

	if err := daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	addr := daemon.Addr()
	if addr == "" {
		t.Fatal("expected bound address")
	}
	resp, err := http.Get("http://" + addr + "/api/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d", resp.StatusCode)
	}
	var status struct {
		Running bool `json:"running"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Running {
		t.Fatal("expected running daemon")
	}
}

func TestDaemonEnforcesSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := server.NewDaemon(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewDaemon: %v", err)
	}
	t.Cleanup(func() { _ = first.Close() })
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	second, err := server.NewDaemon(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewDaemon second: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second daemon start to fail while lock is held")
	}
}

func TestDaemonStopIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	daemon, err := server.NewDaemon(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewDaemon: %v", err)
	}
	if err := daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	daemon.Stop()
	daemon.Stop()
	if err := daemon.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
