// Package ir provides the value types shared by every marbles package.
//
// This package contains the data model only: notifications, timed events,
// timelines, subscription logs and their canonical rendering. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Frames are virtual time units (int64), never wall-clock timestamps
//   - Notifications are values, so copying never shares mutable state
//   - Nested streams are tagged explicitly with Nested
//   - Go errors compare by type name and message only (ErrorInfo)
package ir
