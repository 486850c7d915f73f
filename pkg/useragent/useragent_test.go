package useragent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/twofactor/pkg/useragent"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ua    string
		want  useragent.Info
		label string
	}{
		{
			name:  "chrome on macos",
			ua:    "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
			want:  useragent.Info{Browser: "Chrome", OS: "macOS", Device: useragent.DeviceDesktop},
			label: "Chrome on macOS",
		},
		{
			name:  "safari on iphone",
			ua:    "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
			want:  useragent.Info{Browser: "Safari", OS: "iOS", Device: useragent.DeviceMobile},
			label: "Safari on iOS",
		},
		{
			name:  "edge on windows",
			ua:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36 Edg/126.0.0.0",
			want:  useragent.Info{Browser: "Edge", OS: "Windows", Device: useragent.DeviceDesktop},
			label: "Edge on Windows",
		},
		{
			name:  "firefox on android tablet",
			ua:    "Mozilla/5.0 (Android 14; Tablet; rv:127.0) Gecko/127.0 Firefox/127.0",
			want:  useragent.Info{Browser: "Firefox", OS: "Android", Device: useragent.DeviceTablet},
			label: "Firefox on Android",
		},
		{
			name:  "bot",
			ua:    "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			want:  useragent.Info{Device: useragent.DeviceBot},
			label: "Automated client",
		},
		{
			name:  "empty",
			ua:    "  ",
			want:  useragent.Info{Device: useragent.DeviceUnknown},
			label: "Unknown device",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := useragent.Parse(tt.ua)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.label, useragent.Label(tt.ua))
		})
	}
}
