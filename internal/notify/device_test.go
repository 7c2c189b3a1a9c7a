package notify

import "testing"

func TestDeviceClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"empty", "", "Unknown Device"},
		{"unknown placeholder", "Unknown", "Unknown Device"},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", "iPhone"},
		{"android", "Mozilla/5.0 (Linux; Android 14; Pixel 8)", "Android"},
		{"mac", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)", "Mac"},
		{"windows", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)", "Windows"},
		{"short custom agent", "curl/8.0", "curl/8.0"},
		{"long custom agent truncated", "SomeVeryLongCustomAgentString/2.3.4", "SomeVeryLongCustomAg"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := DeviceClass(tc.ua); got != tc.want {
				t.Errorf("DeviceClass(%q) = %q, want %q", tc.ua, got, tc.want)
			}
		})
	}
}
