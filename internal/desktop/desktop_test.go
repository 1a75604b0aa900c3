package desktop

import (
	"errors"
	"strings"
	"testing"
)

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantLast string
	}{
		{"darwin", "open", "http://x/"},
		{"linux", "xdg-open", "http://x/"},
		{"windows", "rundll32", "http://x/"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args, err := openCommand(tt.goos, "http://x/")
			if err != nil {
				t.Fatal(err)
			}
			if name != tt.wantName || args[len(args)-1] != tt.wantLast {
				t.Errorf("got %s %v", name, args)
			}
		})
	}
	if _, _, err := openCommand("plan9", "http://x/"); err == nil {
		t.Error("expected unsupported OS error")
	}
}

func TestOpenUsesStarter(t *testing.T) {
	var gotName string
	var gotArgs []string
	orig := start
	start = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}
	defer func() { start = orig }()

	if err := Open("http://localhost:5173/"); err != nil {
		t.Skipf("platform not supported: %v", err)
	}
	if gotName == "" || gotArgs[len(gotArgs)-1] != "http://localhost:5173/" {
		t.Errorf("started %s %v", gotName, gotArgs)
	}
}

func TestNotifyPassesLocalIcon(t *testing.T) {
	type call struct{ title, body, icon string }
	var got []call
	orig := show
	show = func(title, body, icon string) error {
		got = append(got, call{title, body, icon})
		return nil
	}
	defer func() { show = orig }()

	if err := Notify("Title", "Body", "/usr/share/icons/doc.png"); err != nil {
		t.Fatal(err)
	}
	if err := Notify("T", "B", "/icon-192.png"); err != nil {
		t.Fatal(err)
	}
	if err := Notify("T", "B", ""); err != nil {
		t.Fatal(err)
	}

	want := []call{
		{"Title", "Body", "/usr/share/icons/doc.png"},
		{"T", "B", ""},
		{"T", "B", ""},
	}
	if len(got) != len(want) {
		t.Fatalf("calls = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNotifyReturnsError(t *testing.T) {
	orig := show
	show = func(string, string, string) error { return errors.New("no notification daemon") }
	defer func() { show = orig }()

	if err := Notify("T", "B", ""); err == nil || !strings.Contains(err.Error(), "daemon") {
		t.Errorf("err = %v", err)
	}
}
