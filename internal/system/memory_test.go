package system

import (
	"testing"
	"time"
)

func TestMemory_ReadWrite(t *testing.T) {
	sys := NewMemory()
	if err := sys.WriteFile("/p/a.txt", "hello"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := sys.ReadFile("/p/a.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if data != "hello" {
		t.Errorf("ReadFile = %q, want %q", data, "hello")
	}
	if _, err := sys.ReadFile("/p/missing.txt"); err == nil {
		t.Error("ReadFile on missing file should fail")
	}
}

func TestMemory_Existence(t *testing.T) {
	sys := NewMemory()
	sys.Touch("/p/dir/a.txt", "x")

	if !sys.FileExists("/p/dir/a.txt") {
		t.Error("FileExists should be true")
	}
	if sys.FileExists("/p/dir") {
		t.Error("FileExists on a directory should be false")
	}
	if !sys.DirectoryExists("/p/dir") {
		t.Error("DirectoryExists should be true")
	}
	if sys.DirectoryExists("/p/other") {
		t.Error("DirectoryExists on missing dir should be false")
	}
}

func TestMemory_ReadDirectory(t *testing.T) {
	sys := NewMemory()
	sys.Touch("/p/a.txt", "1")
	sys.Touch("/p/sub/b.txt", "2")
	sys.Touch("/p/sub/c.txt", "3")

	names, err := sys.ReadDirectory("/p")
	if err != nil {
		t.Fatalf("ReadDirectory: %v", err)
	}
	want := []string{"a.txt", "sub"}
	if len(names) != len(want) {
		t.Fatalf("ReadDirectory = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ReadDirectory[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestMemory_FileWatch(t *testing.T) {
	sys := NewMemory()
	sys.Touch("/p/a.js", "v1")

	var events []FileEvent
	w, err := sys.WatchFile("/p/a.js", func(ev FileEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("WatchFile: %v", err)
	}

	sys.Touch("/p/a.js", "v2")
	sys.Touch("/p/other.js", "x")
	sys.Remove("/p/a.js")

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(events), events)
	}
	if events[0].Kind != EventChanged || events[0].Path != "/p/a.js" {
		t.Errorf("event 0 = %+v, want change on /p/a.js", events[0])
	}
	if events[1].Kind != EventUnlinked {
		t.Errorf("event 1 = %+v, want unlink", events[1])
	}

	w.Close()
	sys.Touch("/p/a.js", "v3")
	if len(events) != 2 {
		t.Error("closed watch should not deliver events")
	}
	if sys.WatchCount() != 0 {
		t.Errorf("WatchCount = %d, want 0", sys.WatchCount())
	}
}

func TestMemory_DirectoryWatch(t *testing.T) {
	sys := NewMemory()

	var events []FileEvent
	if _, err := sys.WatchDirectory("/p/src", func(ev FileEvent) {
		events = append(events, ev)
	}); err != nil {
		t.Fatalf("WatchDirectory: %v", err)
	}

	sys.Touch("/p/src/a.ts", "x")
	sys.Touch("/p/elsewhere/b.ts", "y")

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1: %v", len(events), events)
	}
	if events[0].Path != "/p/src/a.ts" {
		t.Errorf("event path = %q", events[0].Path)
	}
}

func TestMemory_Timers(t *testing.T) {
	sys := NewMemory()

	var fired []string
	sys.After(100*time.Millisecond, func() { fired = append(fired, "a") })
	sys.After(50*time.Millisecond, func() { fired = append(fired, "b") })
	late := sys.After(300*time.Millisecond, func() { fired = append(fired, "c") })

	sys.AdvanceClock(120 * time.Millisecond)
	if len(fired) != 2 || fired[0] != "b" || fired[1] != "a" {
		t.Fatalf("fired = %v, want [b a]", fired)
	}

	if !late.Stop() {
		t.Error("Stop on pending timer should report true")
	}
	sys.AdvanceClock(time.Second)
	if len(fired) != 2 {
		t.Errorf("stopped timer fired: %v", fired)
	}
	if sys.PendingTimers() != 0 {
		t.Errorf("PendingTimers = %d, want 0", sys.PendingTimers())
	}
}

func TestMemory_TimerResetPattern(t *testing.T) {
	sys := NewMemory()

	count := 0
	var timer Timer
	arm := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = sys.After(250*time.Millisecond, func() { count++ })
	}

	arm()
	sys.AdvanceClock(100 * time.Millisecond)
	arm()
	sys.AdvanceClock(100 * time.Millisecond)
	arm()
	if count != 0 {
		t.Fatalf("timer fired early: %d", count)
	}
	sys.AdvanceClock(250 * time.Millisecond)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestMemory_Env(t *testing.T) {
	sys := NewMemory()
	if got := sys.Getenv("FRIDA_COMPILE_ROOT"); got != "" {
		t.Errorf("Getenv = %q, want empty", got)
	}
	sys.Setenv("FRIDA_COMPILE_ROOT", "/opt/frida-compile")
	if got := sys.Getenv("FRIDA_COMPILE_ROOT"); got != "/opt/frida-compile" {
		t.Errorf("Getenv = %q", got)
	}
}

func TestMemory_DecodeBase64(t *testing.T) {
	sys := NewMemory()
	data, err := sys.DecodeBase64("eyJ2ZXJzaW9uIjozfQ==")
	if err != nil {
		t.Fatalf("DecodeBase64: %v", err)
	}
	if string(data) != `{"version":3}` {
		t.Errorf("DecodeBase64 = %q", data)
	}
}
