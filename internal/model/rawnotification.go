package model

// RawNotification is one item of an upstream DJEN page, decoded as-is.
// Keys vary across API versions and any of them may be missing.
type RawNotification map[string]any
