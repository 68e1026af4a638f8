package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRemotesConfigRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	in := RemotesConfig{
		Active: "prod",
		Remotes: map[string]Remote{
			"prod":  {URL: "https://gantry.example.com", Token: "tok_abc", NATSURL: "nats://prod:4222"},
			"local": {URL: "http://localhost:8080"},
		},
	}
	if err := saveRemotesConfig(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := loadRemotesConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Active != "prod" {
		t.Errorf("Active = %q, want %q", got.Active, "prod")
	}
	prod := got.Remotes["prod"]
	if prod.URL != "https://gantry.example.com" || prod.Token != "tok_abc" || prod.NATSURL != "nats://prod:4222" {
		t.Errorf("prod remote = %+v, wrong values", prod)
	}
}

func TestLoadRemotesConfig_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadRemotesConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Active != "" || len(cfg.Remotes) != 0 {
		t.Errorf("expected empty config, got %+v", cfg)
	}
	if cfg.Remotes == nil {
		t.Error("Remotes map must not be nil after load")
	}
}

func TestSaveRemotesConfig_Permissions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := saveRemotesConfig(RemotesConfig{Remotes: map[string]Remote{}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	path, _ := remoteConfigPath()
	check := func(p string, want os.FileMode) {
		t.Helper()
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		if got := info.Mode().Perm(); got != want {
			t.Errorf("%s permissions = %04o, want %04o", p, got, want)
		}
	}
	check(path, 0o600)
	check(filepath.Dir(path), 0o700)
}

func TestRemoteLifecycle(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	mustRun := func(fn func() error) {
		t.Helper()
		if err := fn(); err != nil {
			t.Fatal(err)
		}
	}

	mustRun(func() error { return remoteAddCmd.RunE(remoteAddCmd, []string{"local", "http://localhost:8080"}) })
	mustRun(func() error { return remoteAddCmd.RunE(remoteAddCmd, []string{"local", "http://localhost:8080"}) }) // upsert
	mustRun(func() error { return remoteUseCmd.RunE(remoteUseCmd, []string{"local"}) })

	cfg, _ := loadRemotesConfig()
	if cfg.Active != "local" {
		t.Fatalf("Active = %q, want %q", cfg.Active, "local")
	}

	// list marks the active remote with *
	var buf bytes.Buffer
	remoteListCmd.SetOut(&buf)
	mustRun(func() error { return remoteListCmd.RunE(remoteListCmd, nil) })
	if !strings.Contains(buf.String(), "* local") {
		t.Errorf("list missing active marker; got:\n%s", buf.String())
	}

	buf.Reset()
	remoteShowCmd.SetOut(&buf)
	mustRun(func() error { return remoteShowCmd.RunE(remoteShowCmd, nil) })
	out := buf.String()
	if !strings.Contains(out, "local") || !strings.Contains(out, "http://localhost:8080") || !strings.Contains(out, "(active)") {
		t.Errorf("show missing expected content; got:\n%s", out)
	}

	mustRun(func() error { return remoteRemoveCmd.RunE(remoteRemoveCmd, []string{"local"}) })
	cfg, _ = loadRemotesConfig()
	if cfg.Active != "" {
		t.Errorf("Active = %q after removing active remote, want empty", cfg.Active)
	}
	if _, ok := cfg.Remotes["local"]; ok {
		t.Error("remote still present after remove")
	}

	if err := remoteRemoveCmd.RunE(remoteRemoveCmd, []string{"local"}); err == nil {
		t.Error("expected error removing unknown remote")
	}
	if err := remoteUseCmd.RunE(remoteUseCmd, []string{"nope"}); err == nil {
		t.Error("expected error using unknown remote")
	}
}
