package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func wavBytes(sampleRate, n int) []byte {
	var buf bytes.Buffer
	dataLen := n * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

// echoServer answers every upload with the given fragments.
func echoServer(t *testing.T, replies ...[]byte) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt == websocket.TextMessage && string(data) == "EOF" {
				break
			}
		}
		for _, r := range replies {
			conn.WriteMessage(websocket.BinaryMessage, r)
		}
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_PlaysFragments(t *testing.T) {
	endpoint := echoServer(t, wavBytes(8000, 400), wavBytes(8000, 400))
	params := &Params{
		File:     writeFile(t, "voice.wav", wavBytes(8000, 100)),
		Endpoint: endpoint,
		Mute:     true,
	}

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), params, &stdout, &stderr)
	if code != exitFinished {
		t.Fatalf("Run() = %d, want %d\nstdout:\n%s\nstderr:\n%s", code, exitFinished, stdout.String(), stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{"voice.wav", "audio/wav", "Finished playing audio.", "2 fragment(s) played", "100.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_InvalidFile(t *testing.T) {
	params := &Params{
		File:     writeFile(t, "notes.wav", []byte("plain text")),
		Endpoint: "ws://127.0.0.1:1/stream",
		Mute:     true,
	}

	var stdout, stderr bytes.Buffer
	if code := Run(context.Background(), params, &stdout, &stderr); code != exitInvalid {
		t.Fatalf("Run() = %d, want %d", code, exitInvalid)
	}
	if !strings.Contains(stdout.String(), "Please upload a valid WAV file.") {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestRun_NoPlaybackWhenServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	params := &Params{
		File:     writeFile(t, "voice.wav", wavBytes(8000, 100)),
		Endpoint: endpoint,
		Mute:     true,
	}

	var stdout, stderr bytes.Buffer
	if code := Run(context.Background(), params, &stdout, &stderr); code != exitNoPlayback {
		t.Fatalf("Run() = %d, want %d\n%s", code, exitNoPlayback, stdout.String())
	}
	if !strings.Contains(stdout.String(), "Connection error") {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestLoadSettings_Overrides(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{
			name:   "defaults",
			params: Params{},
		},
		{
			name:   "endpoint and chunk size",
			params: Params{Endpoint: "wss://example.com/stream", ChunkSize: 4096},
		},
		{
			name:   "save and playlist",
			params: Params{Save: "/tmp/rec", Playlist: "pls", Mute: true, Notify: true},
		},
		{
			name:    "unknown playlist format",
			params:  Params{Save: "/tmp/rec", Playlist: "foo"},
			wantErr: true,
		},
		{
			name:    "bad endpoint",
			params:  Params{Endpoint: "http://example.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := loadSettings(&tt.params)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("loadSettings() error = %v", err)
			}
			if tt.params.Endpoint != "" && s.Endpoint != tt.params.Endpoint {
				t.Errorf("Endpoint = %q", s.Endpoint)
			}
			if tt.params.ChunkSize > 0 && s.ChunkSize != tt.params.ChunkSize {
				t.Errorf("ChunkSize = %d", s.ChunkSize)
			}
			if tt.params.Save != "" {
				if !s.SaveFragments || s.RecordingsPath != filepath.Join(tt.params.Save, "{name}") {
					t.Errorf("save settings = %v %q", s.SaveFragments, s.RecordingsPath)
				}
			}
			if tt.params.Playlist != "" && s.PlaylistFormat != tt.params.Playlist {
				t.Errorf("PlaylistFormat = %q", s.PlaylistFormat)
			}
			if s.Mute != tt.params.Mute || s.Notify != tt.params.Notify {
				t.Errorf("Mute = %v, Notify = %v", s.Mute, s.Notify)
			}
		})
	}
}

func TestLoadSettings_ConfigFile(t *testing.T) {
	path := writeFile(t, "config.json", []byte(`{"endpoint": "ws://10.0.0.1:9000/stream", "chunk_size": 1024}`))

	s, err := loadSettings(&Params{Config: path, ChunkSize: 2048})
	if err != nil {
		t.Fatal(err)
	}
	if s.Endpoint != "ws://10.0.0.1:9000/stream" {
		t.Errorf("Endpoint = %q", s.Endpoint)
	}
	if s.ChunkSize != 2048 {
		t.Errorf("ChunkSize = %d, flag should win", s.ChunkSize)
	}
}
