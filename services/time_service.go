package services

import "time"

// NowMillis returns the current time as epoch milliseconds, the timestamp
// unit the Minted API uses.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
