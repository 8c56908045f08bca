package config

import "testing"

func TestResolveDefaults_DerivesDriverFromBuildTarget(t *testing.T) {
	cases := []struct {
		target string
		driver string
		want   string
		ok     bool
	}{
		{"local", "auto", "sqlite", true},
		{"local", "", "sqlite", true},
		{"cloud", "auto", "postgres", true},
		{"cloud", "sqlite", "sqlite", true},
		{"local", "postgres", "postgres", true},
		{"docker", "auto", "", false},
		{"local", "mysql", "", false},
	}
	for _, tc := range cases {
		cfg := &Config{BuildTarget: tc.target, DBDriver: tc.driver}
		err := cfg.ResolveDefaults()
		if tc.ok != (err == nil) {
			t.Errorf("ResolveDefaults(%q,%q): err=%v, want ok=%v", tc.target, tc.driver, err, tc.ok)
			continue
		}
		if tc.ok && cfg.DBDriver != tc.want {
			t.Errorf("ResolveDefaults(%q,%q): driver=%q, want %q", tc.target, tc.driver, cfg.DBDriver, tc.want)
		}
	}
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	if !cfg.IsTesting() {
		t.Error("NewForTesting should produce a testing environment")
	}
	if cfg.IsProduction() {
		t.Error("testing config must not be production")
	}
	if cfg.GetHTTPAddr() != ":8080" {
		t.Errorf("http addr: got %s", cfg.GetHTTPAddr())
	}
}
