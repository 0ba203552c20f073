package discovery

import "testing"

func TestService_String(t *testing.T) {
	svc := &Service{
		Instance: "itpctl-loft",
		Hostname: "pi.local.",
		IP:       "192.168.4.16",
		Port:     8765,
	}

	want := `ITP tap "itpctl-loft" (pi.local.) at 192.168.4.16:8765`
	if got := svc.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestService_URL(t *testing.T) {
	tests := []struct {
		name string
		svc  *Service
		want string
	}{
		{
			name: "defaults",
			svc:  &Service{IP: "10.0.0.5", Port: 8765},
			want: "ws://10.0.0.5:8765/ws",
		},
		{
			name: "tls and custom path",
			svc:  &Service{IP: "10.0.0.5", Port: 443, Metadata: map[string]string{"tls": "1", "path": "/tap"}},
			want: "wss://10.0.0.5:443/tap",
		},
		{
			name: "IPv6",
			svc:  &Service{IP: "fe80::1", Port: 8765, Metadata: map[string]string{"tls": "0"}},
			want: "ws://[fe80::1]:8765/ws",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.svc.URL(); got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestService_GetMetadata(t *testing.T) {
	svc := &Service{Metadata: map[string]string{"version": "v0.3.0"}}

	if got := svc.GetMetadata("version"); got != "v0.3.0" {
		t.Errorf("GetMetadata(version) = %q, want v0.3.0", got)
	}
	if got := svc.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q, want empty", got)
	}
	if got := (&Service{}).GetMetadata("version"); got != "" {
		t.Errorf("GetMetadata on nil metadata = %q, want empty", got)
	}
}
