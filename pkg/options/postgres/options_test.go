package postgres

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestOptionsJSONMarshal_PasswordRedacted(t *testing.T) {
	opts := &Options{
		Host:     "localhost",
		Port:     5432,
		Username: "postgres",
		Password: "super-secret",
		Database: "proxyscope",
	}

	data, err := json.Marshal(opts)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	s := string(data)
	if strings.Contains(s, "super-secret") {
		t.Errorf("JSON output contains plaintext password: %s", s)
	}
	if !strings.Contains(s, "[REDACTED]") {
		t.Errorf("JSON output should contain [REDACTED] marker: %s", s)
	}
}

func TestOptionsJSONMarshal_EmptyPasswordNotRedacted(t *testing.T) {
	opts := NewOptions()
	opts.Password = ""

	data, err := json.Marshal(opts)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	if strings.Contains(string(data), "[REDACTED]") {
		t.Errorf("empty password should not be redacted: %s", string(data))
	}
}

func TestOptionsString_PasswordRedacted(t *testing.T) {
	opts := &Options{
		Host:     "localhost",
		Port:     5432,
		Username: "postgres",
		Password: "super-secret",
		Database: "proxyscope",
	}

	s := opts.String()
	if strings.Contains(s, "super-secret") {
		t.Errorf("String() output contains plaintext password: %s", s)
	}
	if !strings.Contains(s, "[REDACTED]") {
		t.Errorf("String() output should contain [REDACTED] marker: %s", s)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{
			name:    "默认配置合法",
			mutate:  func(o *Options) {},
			wantErr: false,
		},
		{
			name:    "host 为空",
			mutate:  func(o *Options) { o.Host = "" },
			wantErr: true,
		},
		{
			name:    "端口越界",
			mutate:  func(o *Options) { o.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "端口为零",
			mutate:  func(o *Options) { o.Port = 0 },
			wantErr: true,
		},
		{
			name:    "database 为空",
			mutate:  func(o *Options) { o.Database = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NewOptions()
			tt.mutate(opts)
			errs := opts.Validate()
			if tt.wantErr && len(errs) == 0 {
				t.Errorf("expected validation errors, got none")
			}
			if !tt.wantErr && len(errs) != 0 {
				t.Errorf("expected no validation errors, got %v", errs)
			}
		})
	}
}
