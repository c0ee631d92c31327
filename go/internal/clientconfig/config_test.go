package clientconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	body := `
serverUrl: ws://game.example/ws
roomId: room-from-file
statusAddr: ":9000"
volumes:
  master: 0.5
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JUSTONE_ROOM_ID", "room-from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerURL != "ws://game.example/ws" {
		t.Fatalf("file value lost: %q", cfg.ServerURL)
	}
	if cfg.RoomID != "room-from-env" {
		t.Fatalf("env must override file, got %q", cfg.RoomID)
	}
	if cfg.StatusAddr != ":9000" {
		t.Fatalf("file status addr lost: %q", cfg.StatusAddr)
	}
	if cfg.Volumes["master"] != 0.5 {
		t.Fatalf("volumes not parsed: %v", cfg.Volumes)
	}
	if cfg.Transport != "websocket" {
		t.Fatalf("default transport lost: %q", cfg.Transport)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JUSTONE_ROOM_ID", "room-1")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerURL != Default().ServerURL {
		t.Fatalf("want default server url, got %q", cfg.ServerURL)
	}
}

func TestLoad_RequiresRoomID(t *testing.T) {
	t.Setenv("JUSTONE_ROOM_ID", "")

	if _, err := Load(""); err == nil {
		t.Fatal("want error when no room id is configured")
	}
}
