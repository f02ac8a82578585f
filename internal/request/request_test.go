package request

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
)

func TestClientIP(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		wantIP  string
	}{
		{"x-forwarded-for", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "", "1.2.3.4"},
		{"x-forwarded-for first", map[string]string{"X-Forwarded-For": " 1.2.3.4 , 5.6.7.8 "}, "", "1.2.3.4"},
		{"x-real-ip", map[string]string{"X-Real-IP": "9.9.9.9"}, "", "9.9.9.9"},
		{"remote addr", nil, "10.0.0.1:12345", "10.0.0.1:12345"},
		{"xff over xri", map[string]string{"X-Forwarded-For": "1.2.3.4", "X-Real-IP": "9.9.9.9"}, "", "1.2.3.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if tt.remote != "" {
				r.RemoteAddr = tt.remote
			}
			got := ClientIP(r)
			if got != tt.wantIP {
				t.Errorf("ClientIP() = %q, want %q", got, tt.wantIP)
			}
		})
	}
}

func TestTenantFromContext(t *testing.T) {
	t.Parallel()
	tn := &models.Tenant{ID: uuid.New(), Email: "a@b.c"}
	ctx := WithTenant(context.Background(), tn)
	r := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	got := TenantFromContext(r)
	if got != tn {
		t.Errorf("TenantFromContext() = %p, want %p", got, tn)
	}
	if got != nil && got.Email != "a@b.c" {
		t.Errorf("TenantFromContext().Email = %q, want a@b.c", got.Email)
	}
}

func TestTenantFromContext_NoTenant(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest("GET", "/", nil)
	if got := TenantFromContext(r); got != nil {
		t.Errorf("TenantFromContext() = %+v, want nil", got)
	}
}

func TestTenantFromContext_WrongType(t *testing.T) {
	t.Parallel()
	ctx := context.WithValue(context.Background(), TenantContextKey(), "not a tenant")
	r := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	if got := TenantFromContext(r); got != nil {
		t.Errorf("TenantFromContext() = %+v, want nil when wrong type", got)
	}
}

func TestParam(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		url   string
		param string
		want  string
	}{
		{"canonical", "/?preset=last_7_days", "preset", "last_7_days"},
		{"alias", "/?period=last_7_days", "preset", "last_7_days"},
		{"canonical wins", "/?preset=this_month&period=last_7_days", "preset", "this_month"},
		{"location alias", "/?location=abc", "location_id", "abc"},
		{"view op alias", "/?op=drivers", "view", "drivers"},
		{"missing", "/", "preset", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", tt.url, nil)
			if got := Param(r, tt.param); got != tt.want {
				t.Errorf("Param(%q) = %q, want %q", tt.param, got, tt.want)
			}
		})
	}
}
