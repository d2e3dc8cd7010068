// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package logging

// MaskKey masks an API key for safe inclusion in logs and status output,
// showing only the first and last 4 characters.
// Example: "moltbook_sk_8f3a9b2c1d" -> "molt...2c1d"
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 12 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// TruncateString truncates a string to a maximum length, appending an
// ellipsis when truncation happens. Used to keep log fields bounded.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
