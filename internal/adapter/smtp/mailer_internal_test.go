package smtp

import "testing"

func boolPtr(b bool) *bool { return &b }

func TestImplicitTLS(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want bool
	}{
		{"port 587 defaults to starttls", Options{Port: 587}, false},
		{"port 465 defaults to implicit tls", Options{Port: 465}, true},
		{"secure override forces tls on 587", Options{Port: 587, Secure: boolPtr(true)}, true},
		{"secure override disables tls on 465", Options{Port: 465, Secure: boolPtr(false)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := implicitTLS(tt.opts); got != tt.want {
				t.Errorf("implicitTLS(%+v) = %v, want %v", tt.opts, got, tt.want)
			}
		})
	}
}
