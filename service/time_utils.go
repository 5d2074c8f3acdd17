package service

import (
	"time"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// sameUTCDay reports whether two instants fall on the same UTC calendar day
func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
