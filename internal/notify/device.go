package notify

import "strings"

const maxDeviceLabel = 20

// DeviceClass buckets a user agent into a coarse device label for alert
// copy. Unrecognized agents are truncated rather than dropped so unusual
// clients still show up.
func DeviceClass(ua string) string {
	switch {
	case ua == "" || ua == "Unknown":
		return "Unknown Device"
	case strings.Contains(ua, "iPhone"):
		return "iPhone"
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "Mac"):
		return "Mac"
	case strings.Contains(ua, "Windows"):
		return "Windows"
	}
	if len(ua) > maxDeviceLabel {
		return ua[:maxDeviceLabel]
	}
	return ua
}
