// Package useragent turns a User-Agent header into a short device label for
// trusted device lists, such as "Chrome on macOS" or "Safari on iOS".
package useragent

import "strings"

type keywordSet []string

func newKeywordSet(keywords ...string) keywordSet {
	return keywordSet(keywords)
}

func (k keywordSet) contains(s string) bool {
	for _, kw := range k {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// Device types.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

var (
	botKeywords     = newKeywordSet("bot", "crawler", "spider", "curl/", "wget/", "python-requests", "go-http-client")
	tabletKeywords  = newKeywordSet("ipad", "tablet", "kindle", "silk", "sm-t")
	mobileKeywords  = newKeywordSet("iphone", "ipod", "mobile", "windows phone")
	desktopKeywords = newKeywordSet("windows", "macintosh", "x11", "linux", "cros")
)

// Order matters: more specific products embed the tokens of the ones below.
var browsers = []struct {
	name     string
	keywords keywordSet
}{
	{"Edge", newKeywordSet("edg/", "edge/", "edga/", "edgios/")},
	{"Opera", newKeywordSet("opr/", "opera")},
	{"Samsung Internet", newKeywordSet("samsungbrowser/")},
	{"Yandex", newKeywordSet("yabrowser/")},
	{"Firefox", newKeywordSet("firefox/", "fxios/")},
	{"Chrome", newKeywordSet("chrome/", "crios/", "chromium/")},
	{"Safari", newKeywordSet("safari/")},
}

var systems = []struct {
	name     string
	keywords keywordSet
}{
	{"Windows Phone", newKeywordSet("windows phone")},
	{"Windows", newKeywordSet("windows")},
	{"iOS", newKeywordSet("iphone", "ipad", "ipod")},
	{"macOS", newKeywordSet("macintosh", "mac os x")},
	{"Android", newKeywordSet("android")},
	{"ChromeOS", newKeywordSet("cros", "chromeos")},
	{"Linux", newKeywordSet("linux", "x11")},
}

// Info is the parsed form of a User-Agent header.
type Info struct {
	Browser string
	OS      string
	Device  string
}

// Parse classifies ua. Unrecognized parts are left empty.
func Parse(ua string) Info {
	lower := strings.ToLower(strings.TrimSpace(ua))
	if lower == "" {
		return Info{Device: DeviceUnknown}
	}

	info := Info{Device: parseDevice(lower)}
	if info.Device == DeviceBot {
		return info
	}
	for _, b := range browsers {
		if b.keywords.contains(lower) {
			info.Browser = b.name
			break
		}
	}
	for _, s := range systems {
		if s.keywords.contains(lower) {
			info.OS = s.name
			break
		}
	}
	return info
}

func parseDevice(lower string) string {
	switch {
	case botKeywords.contains(lower):
		return DeviceBot
	case strings.Contains(lower, "android"):
		// Android tablets omit the "mobile" token.
		if strings.Contains(lower, "mobile") {
			return DeviceMobile
		}
		return DeviceTablet
	case tabletKeywords.contains(lower):
		return DeviceTablet
	case mobileKeywords.contains(lower):
		return DeviceMobile
	case desktopKeywords.contains(lower):
		return DeviceDesktop
	default:
		return DeviceUnknown
	}
}

// Label returns a short human-readable description of the device.
func (i Info) Label() string {
	switch {
	case i.Device == DeviceBot:
		return "Automated client"
	case i.Browser != "" && i.OS != "":
		return i.Browser + " on " + i.OS
	case i.Browser != "":
		return i.Browser
	case i.OS != "":
		return i.OS
	default:
		return "Unknown device"
	}
}

// Label is shorthand for Parse(ua).Label().
func Label(ua string) string {
	return Parse(ua).Label()
}
